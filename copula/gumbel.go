// Gumbel copula (上尾相依)
// 生成元: ψ(t) = exp(-t^(1/θ)), θ ≥ 1; θ=1退化为独立
// C(u,v) = exp( -[ (-ln u)^θ + (-ln v)^θ ]^(1/θ) )
// 采样用Marshall-Olkin frailty: V ~ 正稳定St(1/θ), ui = ψ(Ei/V)
package copula

import (
	"math"
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/stat/distuv"
)

type Gumbel struct {
	theta float64
	dim   int
}

func NewGumbel(theta float64, dim int) (*Gumbel, error) {
	if math.IsNaN(theta) || theta < 1 {
		return nil, errorx.Newf(errCode.INVALID_PARAMETER, "gumbel要求 θ ≥ 1, got %v", theta)
	}
	if dim < 2 {
		return nil, errorx.Newf(errCode.INVALID_VALUE, "dim must be >= 2, got %d", dim)
	}
	return &Gumbel{theta: theta, dim: dim}, nil
}

func (g *Gumbel) Dim() int       { return g.dim }
func (g *Gumbel) Theta() float64 { return g.theta }

func (g *Gumbel) SampleUniform(n int, src rand.Source) ([][]float64, error) {
	if n <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "n must be > 0")
	}
	// 独立边界直接走独立均匀, 避免稳定分布采样在α=1处退化
	if g.theta == 1 {
		return independentUniform(n, g.dim, src), nil
	}

	alpha := 1.0 / g.theta
	uni := distuv.Uniform{Min: 0, Max: math.Pi, Src: src}
	expo := distuv.Exponential{Rate: 1, Src: src}

	out := make([][]float64, n)
	for i := range out {
		v := positiveStable(alpha, uni, expo)
		row := make([]float64, g.dim)
		for j := range row {
			e := expo.Rand()
			// ui = ψ(Ei/V) = exp(-(Ei/V)^α)
			row[j] = clampUnit(math.Exp(-math.Pow(e/v, alpha)))
		}
		out[i] = row
	}
	return out, nil
}

// Chambers-Mallows-Stuck 正稳定变量, Laplace变换 E[e^{-tV}] = exp(-t^α)
// V = [sin(αU)/sin(U)^(1/α)] ⋅ [sin((1-α)U)/W]^((1-α)/α), U~U(0,π), W~Exp(1)
func positiveStable(alpha float64, uni distuv.Uniform, expo distuv.Exponential) float64 {
	u := uni.Rand()
	w := expo.Rand()
	a := math.Sin(alpha*u) / math.Pow(math.Sin(u), 1.0/alpha)
	b := math.Pow(math.Sin((1-alpha)*u)/w, (1-alpha)/alpha)
	return a * b
}

// LogDensity 二元Gumbel对数密度
// 记 x=(-ln u)^θ, y=(-ln v)^θ, S=x+y, A=S^(1/θ):
//
//	log c = -A - ln u - ln v + (θ-1)[ln(-ln u)+ln(-ln v)] + (1/θ-2)ln S + ln(A+θ-1)
func (g *Gumbel) LogDensity(u []float64) (float64, error) {
	if err := checkUnitPair(u); err != nil {
		return 0, err
	}
	if g.theta == 1 {
		return 0, nil
	}
	th := g.theta
	lu := -math.Log(u[0])
	lv := -math.Log(u[1])
	s := math.Pow(lu, th) + math.Pow(lv, th)
	a := math.Pow(s, 1/th)

	logc := -a - math.Log(u[0]) - math.Log(u[1]) +
		(th-1)*(math.Log(lu)+math.Log(lv)) +
		(1/th-2)*math.Log(s) +
		math.Log(a+th-1)
	return logc, nil
}
