// 按给定参数模拟切换AR路径, regime链用Categorical逐期抽样
package msar

import (
	"math"
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/stat/distuv"
)

// Simulate 生成长度n的模拟序列及regime路径 (常转移)
// burn为预热期, 丢弃前burn个点消除初值影响
func Simulate(p *Params, order, n, burn int, src rand.Source) (y []float64, states []int, err error) {
	k := len(p.Mu)
	if k < 2 || len(p.Sigma2) != k || len(p.AR) != k {
		return nil, nil, errorx.New(errCode.DIMENSION_MISMATCH, "参数维度不一致")
	}
	for s := 0; s < k; s++ {
		if len(p.AR[s]) != order {
			return nil, nil, errorx.Newf(errCode.DIMENSION_MISMATCH,
				"AR[%d]长度 %d, 期望 %d", s, len(p.AR[s]), order)
		}
		if p.Sigma2[s] <= 0 {
			return nil, nil, errorx.Newf(errCode.INVALID_PARAMETER, "σ²[%d]必须为正", s)
		}
	}
	if n <= 0 || burn < 0 {
		return nil, nil, errorx.New(errCode.INVALID_VALUE, "n必须为正, burn必须非负")
	}

	// 常转移矩阵
	P := make([][]float64, k)
	for i := 0; i < k; i++ {
		P[i] = transRow(p.TransCoef[i])
	}

	total := n + burn + order
	ys := make([]float64, total)
	st := make([]int, total)

	// 初始regime从平稳分布抽
	init := distuv.NewCategorical(ergodic(P), src)
	st[0] = int(init.Rand())
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	for t := 0; t < total; t++ {
		if t > 0 {
			d := distuv.NewCategorical(P[st[t-1]], src)
			st[t] = int(d.Rand())
		}
		s := st[t]
		v := p.Mu[s]
		for i := 1; i <= order; i++ {
			if t-i >= 0 {
				v += p.AR[s][i-1] * ys[t-i]
			}
		}
		ys[t] = v + norm.Rand()*math.Sqrt(p.Sigma2[s])
	}

	drop := burn + order
	return ys[drop:], st[drop:], nil
}
