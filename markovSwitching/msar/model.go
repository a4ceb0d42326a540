// k-regime Markov切换自回归
// 观测方程(回归形式, 条件密度只依赖当期regime):
//
//	y_t = μ_s + Σ φ_{i,s}·y_{t-i} + ε_t,  ε_t ~ N(0, σ²_s),  s = S_t
//
// 隐regime链 S_t ∈ {0..k-1}, 转移矩阵恒定或由外生变量经logistic链接驱动(TVTP)
package msar

import (
	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
)

// 模型配置
type Spec struct {
	NRegimes          int         // regime个数 k ≥ 2
	Order             int         // 自回归阶数 p ≥ 0
	SwitchingAR       bool        // AR系数是否随regime切换
	SwitchingVariance bool        // 方差是否随regime切换
	Exog              [][]float64 // TVTP外生变量, 行数=len(y), nil为常转移; 内部自动加常数列
}

// TVTP 是否时变转移
func (s Spec) TVTP() bool { return s.Exog != nil }

type Model struct {
	spec  Spec
	y     []float64   // 原始序列
	endog []float64   // 有效因变量 y[p:]
	lagX  [][]float64 // 滞后设计 T×(1+p): [1, y_{t-1}, ..., y_{t-p}]
	exog  [][]float64 // TVTP设计(含常数列), 与endog对齐, 常转移为nil
	T     int         // 有效样本量 len(y)-p
	m     int         // TVTP设计列数(含常数)
}

// NewModel 构造模型并校验输入
func NewModel(y []float64, spec Spec) (*Model, error) {
	k, p := spec.NRegimes, spec.Order
	if k < 2 {
		return nil, errorx.Newf(errCode.INVALID_PARAMETER, "NRegimes必须 ≥ 2, got %d", k)
	}
	if p < 0 {
		return nil, errorx.Newf(errCode.INVALID_PARAMETER, "Order必须 ≥ 0, got %d", p)
	}
	if len(y) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "输入序列为空")
	}
	T := len(y) - p
	// 每个regime至少要有几个自由度可分
	if T < 4*k {
		return nil, errorx.Newf(errCode.INVALID_VALUE, "有效样本 %d 过小 (k=%d, p=%d)", T, k, p)
	}

	m := &Model{spec: spec, y: y, T: T}
	m.endog = y[p:]
	m.lagX = make([][]float64, T)
	for t := 0; t < T; t++ {
		row := make([]float64, 1+p)
		row[0] = 1
		for i := 1; i <= p; i++ {
			row[i] = y[p+t-i]
		}
		m.lagX[t] = row
	}

	if spec.TVTP() {
		if len(spec.Exog) != len(y) {
			return nil, errorx.Newf(errCode.DIMENSION_MISMATCH,
				"TVTP外生变量行数 %d 与序列长度 %d 不一致", len(spec.Exog), len(y))
		}
		width := len(spec.Exog[0])
		m.m = width + 1
		m.exog = make([][]float64, T)
		for t := 0; t < T; t++ {
			src := spec.Exog[p+t]
			if len(src) != width {
				return nil, errorx.Newf(errCode.DIMENSION_MISMATCH,
					"TVTP外生变量第%d行宽度 %d, 期望 %d", p+t, len(src), width)
			}
			row := make([]float64, m.m)
			row[0] = 1
			copy(row[1:], src)
			m.exog[t] = row
		}
	} else {
		m.m = 1
	}
	return m, nil
}

func (m *Model) Spec() Spec { return m.spec }

func (m *Model) NObs() int { return m.T }

func (m *Model) Endog() []float64 { return m.endog }

// 每个regime的回归系数个数 (截距+AR)
func (m *Model) nRegCoef() int { return 1 + m.spec.Order }

// resid 第t期在regime s下的残差
func (m *Model) resid(p *Params, t, s int) float64 {
	pred := p.Mu[s]
	for i := 1; i <= m.spec.Order; i++ {
		pred += p.AR[s][i-1] * m.lagX[t][i]
	}
	return m.endog[t] - pred
}
