// Hamilton滤波
// 每期两步:
//
//	预测: pred_t[j] = Σ_i P_t[i][j]·filt_{t-1}[i]
//	更新: filt_t[j] ∝ pred_t[j]·f(y_t|S_t=j), 归一化, 归一化常数即该期似然
package msar

import (
	"math"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/stat/distuv"
)

type FilterResult struct {
	Filtered  [][]float64 // T×k  P(S_t | y_{1..t})
	Predicted [][]float64 // T×k  P(S_t | y_{1..t-1})
	LogLikObs []float64   // 每期对数似然贡献
	LogLik    float64
}

func (m *Model) checkParams(p *Params) error {
	k := m.spec.NRegimes
	if len(p.Mu) != k || len(p.Sigma2) != k || len(p.AR) != k || len(p.TransCoef) != k {
		return errorx.New(errCode.DIMENSION_MISMATCH, "参数regime维度与模型不一致")
	}
	w := (k - 1) * m.m
	for i := 0; i < k; i++ {
		if len(p.TransCoef[i]) != w {
			return errorx.Newf(errCode.DIMENSION_MISMATCH,
				"转移系数第%d行长度 %d, 期望 %d", i, len(p.TransCoef[i]), w)
		}
		if len(p.AR[i]) != m.spec.Order {
			return errorx.Newf(errCode.DIMENSION_MISMATCH,
				"AR系数第%d行长度 %d, 期望 %d", i, len(p.AR[i]), m.spec.Order)
		}
	}
	for s, v := range p.Sigma2 {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errorx.Newf(errCode.INVALID_PARAMETER, "σ²[%d]=%v 必须为正有限", s, v)
		}
	}
	return nil
}

// Filter 返回滤波概率与对数似然
func (m *Model) Filter(p *Params) (*FilterResult, error) {
	if err := m.checkParams(p); err != nil {
		return nil, err
	}
	k, T := m.spec.NRegimes, m.T

	res := &FilterResult{
		Filtered:  make([][]float64, T),
		Predicted: make([][]float64, T),
		LogLikObs: make([]float64, T),
	}

	// 条件密度 f(y_t|S_t=s)
	norms := make([]distuv.Normal, k)
	for s := 0; s < k; s++ {
		norms[s] = distuv.Normal{Mu: 0, Sigma: math.Sqrt(p.Sigma2[s])}
	}

	// 初始分布: 常转移取平稳分布, TVTP取均匀
	var init []float64
	if m.spec.TVTP() {
		init = make([]float64, k)
		for i := range init {
			init[i] = 1 / float64(k)
		}
	} else {
		init = ergodic(m.transAt(p, 0))
	}

	prev := init
	for t := 0; t < T; t++ {
		pred := make([]float64, k)
		if t == 0 {
			copy(pred, init)
		} else {
			P := m.transAt(p, t)
			for j := 0; j < k; j++ {
				acc := 0.0
				for i := 0; i < k; i++ {
					acc += P[i][j] * prev[i]
				}
				pred[j] = acc
			}
		}

		filt := make([]float64, k)
		lik := 0.0
		for j := 0; j < k; j++ {
			filt[j] = pred[j] * norms[j].Prob(m.resid(p, t, j))
			lik += filt[j]
		}
		if lik <= 0 || math.IsNaN(lik) {
			return nil, errorx.Newf(errCode.INVALID_VALUE, "第%d期似然退化: %v", t, lik)
		}
		for j := range filt {
			filt[j] /= lik
		}

		res.Predicted[t] = pred
		res.Filtered[t] = filt
		res.LogLikObs[t] = math.Log(lik)
		res.LogLik += res.LogLikObs[t]
		prev = filt
	}
	return res, nil
}

// LogLik 只算似然值, 供优化目标使用
func (m *Model) LogLik(p *Params) (float64, error) {
	fr, err := m.Filter(p)
	if err != nil {
		return math.Inf(-1), err
	}
	return fr.LogLik, nil
}
