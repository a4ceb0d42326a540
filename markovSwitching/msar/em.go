// EM热启动 (仅常转移)
// E步: 滤波+平滑得到regime后验与相邻期联合概率
// M步: 转移行频数重估 + 按平滑概率加权的WLS重估回归系数与方差
package msar

import (
	"math"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
	"regime/infra/observe/staticLog"
	"regime/ml/ols"

	"gonum.org/v1/gonum/mat"
)

type EMResult struct {
	Params     *Params
	LogLik     float64
	Iterations int
	Converged  bool
}

// EM 从start出发交替E/M步, 对数似然增量小于tol时停止
// 达到maxIter未收敛不报错(热启动语义), Converged=false由调用方处理
func (m *Model) EM(start *Params, maxIter int, tol float64) (*EMResult, error) {
	if m.spec.TVTP() {
		return nil, errorx.New(errCode.INVALID_VALUE, "EM仅支持常转移, TVTP请直接走MLE")
	}
	if maxIter <= 0 || tol <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "maxIter与tol必须为正")
	}

	cur := start
	prevLL := math.Inf(-1)
	for it := 1; it <= maxIter; it++ {
		fr, err := m.Filter(cur)
		if err != nil {
			return nil, err
		}
		smoothed := m.Smooth(cur, fr)
		xi := m.pairwise(cur, fr, smoothed)

		next, err := m.mStep(smoothed, xi)
		if err != nil {
			return nil, err
		}

		if fr.LogLik < prevLL-1e-8 {
			// EM理论上单调, 数值误差导致的回退记录下来
			staticLog.Log.Warnf("EM第%d轮对数似然回退: %.8f -> %.8f", it, prevLL, fr.LogLik)
		}
		if it > 1 && math.Abs(fr.LogLik-prevLL) < tol {
			return &EMResult{Params: next, LogLik: fr.LogLik, Iterations: it, Converged: true}, nil
		}
		prevLL = fr.LogLik
		cur = next
	}
	return &EMResult{Params: cur, LogLik: prevLL, Iterations: maxIter, Converged: false}, nil
}

func (m *Model) mStep(smoothed [][]float64, xi [][][]float64) (*Params, error) {
	k, ord, T := m.spec.NRegimes, m.spec.Order, m.T

	next := &Params{
		Mu:        make([]float64, k),
		AR:        make([][]float64, k),
		Sigma2:    make([]float64, k),
		TransCoef: make([][]float64, k),
	}

	// 转移行重估: P_ij = Σt ξ_t(i,j) / Σt Σj' ξ_t(i,j')
	for i := 0; i < k; i++ {
		row := make([]float64, k)
		denom := 0.0
		for t := 0; t < T-1; t++ {
			for j := 0; j < k; j++ {
				row[j] += xi[t][i][j]
				denom += xi[t][i][j]
			}
		}
		if denom <= 0 {
			return nil, errorx.Newf(errCode.INVALID_VALUE, "regime %d 无占用概率, 转移行退化", i)
		}
		coef := make([]float64, k-1)
		base := clampProb(row[k-1] / denom)
		for j := 0; j < k-1; j++ {
			coef[j] = math.Log(clampProb(row[j]/denom) / base)
		}
		next.TransCoef[i] = coef
	}

	// 回归系数重估
	matY := mat.NewVecDense(T, nil)
	for t := 0; t < T; t++ {
		matY.SetVec(t, m.endog[t])
	}

	if m.spec.SwitchingAR || ord == 0 {
		// 每个regime独立WLS
		matX := mat.NewDense(T, 1+ord, nil)
		for t := 0; t < T; t++ {
			matX.SetRow(t, m.lagX[t])
		}
		w := make([]float64, T)
		pooled := 0.0
		for s := 0; s < k; s++ {
			for t := 0; t < T; t++ {
				w[t] = smoothed[t][s]
			}
			model, err := ols.WeightedRegressionMat(matX, matY, w)
			if err != nil {
				return nil, err
			}
			next.Mu[s] = model.Coeffs[0]
			next.AR[s] = append([]float64(nil), model.Coeffs[1:]...)
			next.Sigma2[s] = model.Sigma2
			pooled += model.Sigma2 * model.WSum
		}
		if !m.spec.SwitchingVariance {
			s2 := pooled / float64(T)
			for s := 0; s < k; s++ {
				next.Sigma2[s] = s2
			}
		}
	} else {
		// AR共享: 展开成T·k行的单一WLS, 列 = k个regime截距指示 + p个滞后
		rows := T * k
		cols := k + ord
		bigX := mat.NewDense(rows, cols, nil)
		bigY := mat.NewVecDense(rows, nil)
		w := make([]float64, rows)
		for t := 0; t < T; t++ {
			for s := 0; s < k; s++ {
				r := t*k + s
				bigX.Set(r, s, 1)
				for i := 0; i < ord; i++ {
					bigX.Set(r, k+i, m.lagX[t][1+i])
				}
				bigY.SetVec(r, m.endog[t])
				w[r] = smoothed[t][s]
			}
		}
		model, err := ols.WeightedRegressionMat(bigX, bigY, w)
		if err != nil {
			return nil, err
		}
		shared := append([]float64(nil), model.Coeffs[k:]...)
		for s := 0; s < k; s++ {
			next.Mu[s] = model.Coeffs[s]
			next.AR[s] = shared
		}

		// 方差重估
		if m.spec.SwitchingVariance {
			for s := 0; s < k; s++ {
				num, den := 0.0, 0.0
				for t := 0; t < T; t++ {
					e := m.resid(next, t, s)
					num += smoothed[t][s] * e * e
					den += smoothed[t][s]
				}
				next.Sigma2[s] = num / den
			}
		} else {
			num := 0.0
			for t := 0; t < T; t++ {
				for s := 0; s < k; s++ {
					e := m.resid(next, t, s)
					num += smoothed[t][s] * e * e
				}
			}
			s2 := num / float64(T)
			for s := 0; s < k; s++ {
				next.Sigma2[s] = s2
			}
		}
	}

	// 方差下限, 防止某regime塌缩到单点
	const sdmin = 1e-10
	for s := 0; s < k; s++ {
		if next.Sigma2[s] < sdmin {
			next.Sigma2[s] = sdmin
		}
	}
	return next, nil
}

func clampProb(p float64) float64 {
	const eps = 1e-10
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
