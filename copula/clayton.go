// Clayton copula (下尾相依)
// 生成元: ψ(t) = (1+t)^(-1/θ), θ > 0; θ→0退化为独立
// C(u,v) = (u^(-θ) + v^(-θ) - 1)^(-1/θ)
// 采样用Gamma frailty: V ~ Gamma(1/θ,1), ui = ψ(Ei/V)
package copula

import (
	"math"
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/stat/distuv"
)

// θ低于该值按独立边界处理, Gamma(1/θ)采样在θ→0时数值失真
const claytonIndepEps = 1e-8

type Clayton struct {
	theta float64
	dim   int
}

func NewClayton(theta float64, dim int) (*Clayton, error) {
	if math.IsNaN(theta) || theta < 0 {
		return nil, errorx.Newf(errCode.INVALID_PARAMETER, "clayton要求 θ ≥ 0, got %v", theta)
	}
	if dim < 2 {
		return nil, errorx.Newf(errCode.INVALID_VALUE, "dim must be >= 2, got %d", dim)
	}
	return &Clayton{theta: theta, dim: dim}, nil
}

func (c *Clayton) Dim() int       { return c.dim }
func (c *Clayton) Theta() float64 { return c.theta }

func (c *Clayton) SampleUniform(n int, src rand.Source) ([][]float64, error) {
	if n <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "n must be > 0")
	}
	if c.theta < claytonIndepEps {
		return independentUniform(n, c.dim, src), nil
	}

	gam := distuv.Gamma{Alpha: 1 / c.theta, Beta: 1, Src: src}
	expo := distuv.Exponential{Rate: 1, Src: src}

	out := make([][]float64, n)
	for i := range out {
		v := gam.Rand()
		row := make([]float64, c.dim)
		for j := range row {
			e := expo.Rand()
			// ui = ψ(Ei/V) = (1+Ei/V)^(-1/θ)
			row[j] = clampUnit(math.Pow(1+e/v, -1/c.theta))
		}
		out[i] = row
	}
	return out, nil
}

// LogDensity 二元Clayton对数密度
//
//	log c = ln(1+θ) - (θ+1)(ln u + ln v) - (2+1/θ)·ln(u^(-θ)+v^(-θ)-1)
func (c *Clayton) LogDensity(u []float64) (float64, error) {
	if err := checkUnitPair(u); err != nil {
		return 0, err
	}
	th := c.theta
	if th < claytonIndepEps {
		return 0, nil
	}
	s := math.Pow(u[0], -th) + math.Pow(u[1], -th) - 1
	if s <= 0 {
		return 0, errorx.New(errCode.INVALID_VALUE, "密度自变量越界")
	}
	logc := math.Log(1+th) - (th+1)*(math.Log(u[0])+math.Log(u[1])) - (2+1/th)*math.Log(s)
	return logc, nil
}
