// 两段式估计: EM热启动 + Nelder-Mead精调, 可选随机扰动重启取最优
package msar

import (
	"math"
	"math/rand/v2"
	"sync"

	"regime/config"
	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
	"regime/infra/observe/staticLog"
	"regime/ml/ols"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

// 拟合输出
type Result struct {
	Params      *Params
	TransMat    [][]float64   // 常转移矩阵
	TransSeq    [][][]float64 // TVTP时每期转移矩阵, 常转移为nil
	Filtered    [][]float64   // T×k 滤波概率
	Smoothed    [][]float64   // T×k 平滑概率
	Resids      []float64     // 平滑概率加权残差
	StdResids   []float64     // 标准化残差
	LogLik      float64
	AIC         float64
	BIC         float64
	Durations   []float64   // 期望持续期 1/(1-p_ii)
	DurationSeq [][]float64 // TVTP时每期持续期
	EMIters     int
	FuncEvals   int
	Restarts    int
}

// Fit 对单变量序列拟合k-regime切换AR模型
func Fit(y []float64, spec Spec, cfg config.FitConfig) (*Result, error) {
	m, err := NewModel(y, spec)
	if err != nil {
		return nil, err
	}

	start, err := m.startParams()
	if err != nil {
		return nil, err
	}

	emIters := 0
	if !spec.TVTP() {
		emr, err := m.EM(start, cfg.EMMaxIter, cfg.EMTol)
		if err != nil {
			// EM在病态起点可能退化, 退回初始值直接精调
			staticLog.Log.Warnf("EM热启动失败, 回退初始值: %v", err)
		} else {
			start = emr.Params
			emIters = emr.Iterations
			staticLog.Log.Debugf("EM热启动: %d轮, loglik=%.6f, converged=%v",
				emr.Iterations, emr.LogLik, emr.Converged)
		}
	}

	v0 := m.pack(start)
	bestV, bestLL, evals, err := m.refineMulti(v0, cfg)
	if err != nil {
		return nil, err
	}

	p := m.unpack(bestV)
	fr, err := m.Filter(p)
	if err != nil {
		return nil, err
	}
	smoothed := m.Smooth(p, fr)

	nPar := float64(m.nParams())
	T := float64(m.T)
	res := &Result{
		Params:    p,
		Filtered:  fr.Filtered,
		Smoothed:  smoothed,
		LogLik:    bestLL,
		AIC:       -2*bestLL + 2*nPar,
		BIC:       -2*bestLL + nPar*math.Log(T),
		EMIters:   emIters,
		FuncEvals: evals,
		Restarts:  cfg.Restarts,
	}
	if spec.TVTP() {
		res.TransSeq = m.TransSeq(p)
		res.DurationSeq = expectedDurationSeq(res.TransSeq)
	} else {
		res.TransMat = m.TransMat(p)
		res.Durations = ExpectedDurations(res.TransMat)
	}
	res.Resids, res.StdResids = m.weightedResids(p, smoothed)
	return res, nil
}

// refineMulti 基准起点 + cfg.Restarts个扰动起点, 并发精调取最优对数似然
func (m *Model) refineMulti(v0 []float64, cfg config.FitConfig) ([]float64, float64, int, error) {
	type fitOut struct {
		v     []float64
		ll    float64
		evals int
		err   error
	}

	n := 1 + cfg.Restarts
	outs := make([]fitOut, n)
	wg := sync.WaitGroup{}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v := append([]float64(nil), v0...)
			if i > 0 {
				// 每个重启独立扰动源
				noise := distuv.Normal{Mu: 0, Sigma: 0.2,
					Src: rand.NewPCG(cfg.Seed, uint64(i))}
				for j := range v {
					v[j] += noise.Rand()
				}
			}
			outs[i].v, outs[i].ll, outs[i].evals, outs[i].err = m.refine(v, cfg)
		}(i)
	}
	wg.Wait()

	bestLL := math.Inf(-1)
	best := -1
	evals := 0
	var lastErr error
	for i := range outs {
		evals += outs[i].evals
		if outs[i].err != nil {
			lastErr = outs[i].err
			continue
		}
		if outs[i].ll > bestLL {
			bestLL = outs[i].ll
			best = i
		}
	}
	if best < 0 {
		return nil, 0, evals, lastErr
	}
	return outs[best].v, bestLL, evals, nil
}

// refine 单次Nelder-Mead最大化对数似然
func (m *Model) refine(v0 []float64, cfg config.FitConfig) ([]float64, float64, int, error) {
	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			p := m.unpack(v)
			ll, err := m.LogLik(p)
			if err != nil || math.IsNaN(ll) {
				return math.Inf(1)
			}
			return -ll
		},
	}
	settings := &optimize.Settings{
		MajorIterations: cfg.MLEMaxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.MLETol,
			Iterations: 200,
		},
	}
	result, err := optimize.Minimize(problem, v0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, 0, errorx.Wrap(errCode.NON_CONVERGENCE, err, "MLE精调失败")
	}
	if result.Status == optimize.IterationLimit {
		return nil, 0, result.Stats.FuncEvaluations, errorx.Newf(errCode.NON_CONVERGENCE,
			"MLE超过最大迭代 %d 未达容差", cfg.MLEMaxIter)
	}
	return result.X, -result.F, result.Stats.FuncEvaluations, nil
}

// startParams 初始参数:
// 全样本OLS给出AR与方差基准, 截距按regime错开, 转移取0.8自持
func (m *Model) startParams() (*Params, error) {
	k, ord, T := m.spec.NRegimes, m.spec.Order, m.T

	matX := mat.NewDense(T, 1+ord, nil)
	matY := mat.NewVecDense(T, nil)
	for t := 0; t < T; t++ {
		matX.SetRow(t, m.lagX[t])
		matY.SetVec(t, m.endog[t])
	}
	base, err := ols.MultiRegressionMat(matX, matY)
	if err != nil {
		return nil, err
	}
	sd := math.Sqrt(base.Sigma2)

	p := &Params{
		Mu:        make([]float64, k),
		AR:        make([][]float64, k),
		Sigma2:    make([]float64, k),
		TransCoef: make([][]float64, k),
	}
	arBase := append([]float64(nil), base.Coeffs[1:]...)
	for s := 0; s < k; s++ {
		// 截距按 ±sd 错开, 打破regime对称性
		p.Mu[s] = base.Coeffs[0] + sd*(float64(s)-float64(k-1)/2)
		p.AR[s] = append([]float64(nil), arBase...)
		if m.spec.SwitchingVariance {
			p.Sigma2[s] = base.Sigma2 * (0.5 + float64(s))
		} else {
			p.Sigma2[s] = base.Sigma2
		}
	}

	// 自持0.8, 其余均分
	selfLogit := math.Log((0.8 * float64(k-1)) / 0.2)
	for i := 0; i < k; i++ {
		coef := make([]float64, (k-1)*m.m)
		for j := 0; j < k-1; j++ {
			if j == i {
				coef[j*m.m] = selfLogit
			}
			// 基准列(i==k-1)本身为0, 已是均分
		}
		if i == k-1 {
			for j := 0; j < k-1; j++ {
				coef[j*m.m] = -selfLogit
			}
		}
		p.TransCoef[i] = coef
	}
	return p, nil
}

// weightedResids 平滑概率加权残差及其标准化
func (m *Model) weightedResids(p *Params, smoothed [][]float64) (resid, std []float64) {
	T, k := m.T, m.spec.NRegimes
	resid = make([]float64, T)
	std = make([]float64, T)
	for t := 0; t < T; t++ {
		e, v := 0.0, 0.0
		for s := 0; s < k; s++ {
			w := smoothed[t][s]
			e += w * m.resid(p, t, s)
			v += w * p.Sigma2[s]
		}
		resid[t] = e
		std[t] = e / math.Sqrt(v)
	}
	return resid, std
}
