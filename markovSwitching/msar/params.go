package msar

import (
	"math"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/mat"
)

// 域内参数. AR与Sigma2始终存k份, 不切换时各份相同
type Params struct {
	Mu        []float64   // k个截距
	AR        [][]float64 // k×p AR系数
	Sigma2    []float64   // k个方差
	TransCoef [][]float64 // 行i: (k-1)组logit系数, 每组m个(常转移m=1), 末列为基准
}

// ParamsFromDirect 由直接给定的转移矩阵构造参数(常转移)
// 行和必须为1、各元素必须位于(0,1), 否则INVALID_PARAMETER
func ParamsFromDirect(mu []float64, ar [][]float64, sigma2 []float64, transMat [][]float64) (*Params, error) {
	k := len(mu)
	if len(sigma2) != k || len(transMat) != k {
		return nil, errorx.New(errCode.DIMENSION_MISMATCH, "mu/sigma2/transMat维度不一致")
	}
	for s, v := range sigma2 {
		if v <= 0 || math.IsNaN(v) {
			return nil, errorx.Newf(errCode.INVALID_PARAMETER, "σ²[%d]=%v 必须为正", s, v)
		}
	}
	p := &Params{Mu: mu, Sigma2: sigma2, TransCoef: make([][]float64, k)}
	p.AR = make([][]float64, k)
	for s := 0; s < k; s++ {
		if ar == nil {
			p.AR[s] = []float64{}
		} else {
			p.AR[s] = ar[s]
		}
	}
	for i, row := range transMat {
		if len(row) != k {
			return nil, errorx.Newf(errCode.DIMENSION_MISMATCH, "转移矩阵第%d行宽度 %d, 期望 %d", i, len(row), k)
		}
		sum := 0.0
		for j, v := range row {
			if v <= 0 || v >= 1 {
				return nil, errorx.Newf(errCode.INVALID_PARAMETER,
					"转移概率P[%d][%d]=%v 必须位于(0,1)", i, j, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-8 {
			return nil, errorx.Newf(errCode.INVALID_PARAMETER, "转移矩阵第%d行和 %v ≠ 1", i, sum)
		}
		// logit化, 末列为基准: a_ij = ln(P_ij/P_ik)
		coef := make([]float64, k-1)
		for j := 0; j < k-1; j++ {
			coef[j] = math.Log(row[j] / row[k-1])
		}
		p.TransCoef[i] = coef
	}
	return p, nil
}

// transRow softmax行: a有k-1个logit, 末项基准0
func transRow(a []float64) []float64 {
	k := len(a) + 1
	maxA := 0.0
	for _, v := range a {
		if v > maxA {
			maxA = v
		}
	}
	out := make([]float64, k)
	sum := math.Exp(-maxA) // 基准项
	for j, v := range a {
		e := math.Exp(v - maxA)
		out[j] = e
		sum += e
	}
	out[k-1] = math.Exp(-maxA)
	for j := range out {
		out[j] /= sum
	}
	return out
}

// transAt 第t期转移矩阵 P[i][j] = P(S_t=j | S_{t-1}=i)
// 常转移时与t无关
func (m *Model) transAt(p *Params, t int) [][]float64 {
	k := m.spec.NRegimes
	P := make([][]float64, k)
	for i := 0; i < k; i++ {
		a := make([]float64, k-1)
		if m.spec.TVTP() {
			for j := 0; j < k-1; j++ {
				dot := 0.0
				for c := 0; c < m.m; c++ {
					dot += m.exog[t][c] * p.TransCoef[i][j*m.m+c]
				}
				a[j] = dot
			}
		} else {
			copy(a, p.TransCoef[i])
		}
		P[i] = transRow(a)
	}
	return P
}

// TransMat 常转移矩阵; TVTP模型应使用TransSeq
func (m *Model) TransMat(p *Params) [][]float64 { return m.transAt(p, 0) }

// TransSeq 每期转移矩阵序列
func (m *Model) TransSeq(p *Params) [][][]float64 {
	out := make([][][]float64, m.T)
	for t := 0; t < m.T; t++ {
		out[t] = m.transAt(p, t)
	}
	return out
}

// ergodic 平稳分布: πP = π, Σπ=1
// 解 (I - P')π = 0 并把末行替换为全1归一; 解失败退回均匀分布
func ergodic(P [][]float64) []float64 {
	k := len(P)
	A := mat.NewDense(k, k, nil)
	b := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			v := -P[j][i]
			if i == j {
				v += 1
			}
			A.Set(i, j, v)
		}
	}
	for j := 0; j < k; j++ {
		A.Set(k-1, j, 1)
	}
	b.SetVec(k-1, 1)

	var pi mat.VecDense
	if err := pi.SolveVec(A, b); err != nil {
		out := make([]float64, k)
		for i := range out {
			out[i] = 1 / float64(k)
		}
		return out
	}
	out := make([]float64, k)
	ok := true
	for i := range out {
		out[i] = pi.AtVec(i)
		if out[i] < 0 || math.IsNaN(out[i]) {
			ok = false
		}
	}
	if !ok {
		for i := range out {
			out[i] = 1 / float64(k)
		}
	}
	return out
}

// nParams 打包向量长度
func (m *Model) nParams() int {
	k, p := m.spec.NRegimes, m.spec.Order
	n := k * (k - 1) * m.m // 转移
	n += k                 // mu
	if m.spec.SwitchingAR {
		n += k * p
	} else {
		n += p
	}
	if m.spec.SwitchingVariance {
		n += k
	} else {
		n++
	}
	return n
}

// pack 域内参数 -> 无约束向量 (σ²取对数)
func (m *Model) pack(p *Params) []float64 {
	k, ord := m.spec.NRegimes, m.spec.Order
	out := make([]float64, 0, m.nParams())
	for i := 0; i < k; i++ {
		out = append(out, p.TransCoef[i]...)
	}
	out = append(out, p.Mu...)
	if m.spec.SwitchingAR {
		for s := 0; s < k; s++ {
			out = append(out, p.AR[s]...)
		}
	} else if ord > 0 {
		out = append(out, p.AR[0]...)
	}
	if m.spec.SwitchingVariance {
		for s := 0; s < k; s++ {
			out = append(out, math.Log(p.Sigma2[s]))
		}
	} else {
		out = append(out, math.Log(p.Sigma2[0]))
	}
	return out
}

// unpack 无约束向量 -> 域内参数
func (m *Model) unpack(v []float64) *Params {
	k, ord := m.spec.NRegimes, m.spec.Order
	p := &Params{
		Mu:        make([]float64, k),
		AR:        make([][]float64, k),
		Sigma2:    make([]float64, k),
		TransCoef: make([][]float64, k),
	}
	pos := 0
	w := (k - 1) * m.m
	for i := 0; i < k; i++ {
		p.TransCoef[i] = append([]float64(nil), v[pos:pos+w]...)
		pos += w
	}
	copy(p.Mu, v[pos:pos+k])
	pos += k
	if m.spec.SwitchingAR {
		for s := 0; s < k; s++ {
			p.AR[s] = append([]float64(nil), v[pos:pos+ord]...)
			pos += ord
		}
	} else {
		shared := append([]float64(nil), v[pos:pos+ord]...)
		pos += ord
		for s := 0; s < k; s++ {
			p.AR[s] = shared
		}
	}
	if m.spec.SwitchingVariance {
		for s := 0; s < k; s++ {
			p.Sigma2[s] = math.Exp(v[pos])
			pos++
		}
	} else {
		s2 := math.Exp(v[pos])
		for s := 0; s < k; s++ {
			p.Sigma2[s] = s2
		}
	}
	return p
}
