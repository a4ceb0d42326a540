// Archimedean copula 采样与估计
// 联合分布 = copula(相依结构) + 任意边缘分布:
//
//	F(x1..xd) = C(F1(x1), ..., Fd(xd))
//
// 采样: copula生成相关均匀样本u, 再逐坐标过边缘分位数函数 xi = Fi^{-1}(ui)
package copula

import (
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/stat/distuv"
)

// 边缘分布, 要求CDF可逆; distuv的连续分布天然满足
type Marginal interface {
	CDF(x float64) float64
	Quantile(p float64) float64
}

var _ Marginal = distuv.Normal{}
var _ Marginal = distuv.Exponential{}

// 参数化copula族, 单一相依参数theta
type Copula interface {
	Dim() int
	Theta() float64
	// SampleUniform 生成n×d相关均匀样本
	SampleUniform(n int, src rand.Source) ([][]float64, error)
	// LogDensity 二元对数密度 log c(u,v), u∈(0,1)^2
	LogDensity(u []float64) (float64, error)
}

type Family int

const (
	FAMILY_GUMBEL Family = iota // "gumbel"
	FAMILY_CLAYTON
	FAMILY_FRANK
	FAMILY_INDEPENDENCE
	FAMILY_ERROR
)

func (f Family) String() string {
	switch f {
	case FAMILY_GUMBEL:
		return "gumbel"
	case FAMILY_CLAYTON:
		return "clayton"
	case FAMILY_FRANK:
		return "frank"
	case FAMILY_INDEPENDENCE:
		return "independence"
	default:
		return "ERROR"
	}
}

func GetMyFamily(s string) Family {
	switch s {
	case "gumbel":
		return FAMILY_GUMBEL
	case "clayton":
		return FAMILY_CLAYTON
	case "frank":
		return FAMILY_FRANK
	case "independence":
		return FAMILY_INDEPENDENCE
	default:
		return FAMILY_ERROR
	}
}

// NewCopula 按族构造copula
func NewCopula(f Family, theta float64, dim int) (Copula, error) {
	switch f {
	case FAMILY_GUMBEL:
		return NewGumbel(theta, dim)
	case FAMILY_CLAYTON:
		return NewClayton(theta, dim)
	case FAMILY_FRANK:
		return NewFrank(theta)
	case FAMILY_INDEPENDENCE:
		return NewIndependence(dim)
	default:
		return nil, errorx.Newf(errCode.INVALID_VALUE, "未知copula族: %d", f)
	}
}

// Sample 联合采样: copula均匀样本 -> 逐坐标边缘分位数
// 返回n×d矩阵; 边缘个数与copula维度不一致报DIMENSION_MISMATCH
func Sample(c Copula, marginals []Marginal, n int, src rand.Source) ([][]float64, error) {
	if c == nil {
		return nil, errorx.New(errCode.EMPTY_VALUE, "copula is nil")
	}
	if len(marginals) != c.Dim() {
		return nil, errorx.Newf(errCode.DIMENSION_MISMATCH,
			"边缘个数 %d 与copula维度 %d 不一致", len(marginals), c.Dim())
	}
	if n <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "n must be > 0")
	}

	u, err := c.SampleUniform(n, src)
	if err != nil {
		return nil, err
	}
	for i := range u {
		for j, m := range marginals {
			u[i][j] = m.Quantile(u[i][j])
		}
	}
	return u, nil
}

// 独立均匀样本, theta位于独立边界时各族共用
func independentUniform(n, d int, src rand.Source) [][]float64 {
	uni := distuv.Uniform{Min: 0, Max: 1, Src: src}
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, d)
		for j := range row {
			row[j] = clampUnit(uni.Rand())
		}
		out[i] = row
	}
	return out
}

// 采样值压回开区间(0,1), 防止边缘Quantile拿到0/1
func clampUnit(u float64) float64 {
	const eps = 1e-12
	if u < eps {
		return eps
	}
	if u > 1-eps {
		return 1 - eps
	}
	return u
}

func checkUnitPair(u []float64) error {
	if len(u) != 2 {
		return errorx.Newf(errCode.DIMENSION_MISMATCH, "密度仅支持二元, got %d", len(u))
	}
	for _, v := range u {
		if v <= 0 || v >= 1 {
			return errorx.Newf(errCode.INVALID_VALUE, "u必须位于开区间(0,1), got %v", v)
		}
	}
	return nil
}
