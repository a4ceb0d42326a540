// Frank copula (对称相依, 无尾相依), 仅实现二元
// C(u,v) = -(1/θ)·ln( 1 + (e^(-θu)-1)(e^(-θv)-1)/(e^(-θ)-1) ), θ ≠ 0
// θ→0退化为独立; θ<0为负相依
// 二元采样用条件分布逆变换, 无需frailty
package copula

import (
	"math"
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/stat/distuv"
)

// |θ|低于该值按独立边界处理
const frankIndepEps = 1e-8

type Frank struct {
	theta float64
}

func NewFrank(theta float64) (*Frank, error) {
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return nil, errorx.Newf(errCode.INVALID_PARAMETER, "frank要求 θ 有限, got %v", theta)
	}
	return &Frank{theta: theta}, nil
}

func (f *Frank) Dim() int       { return 2 }
func (f *Frank) Theta() float64 { return f.theta }

func (f *Frank) SampleUniform(n int, src rand.Source) ([][]float64, error) {
	if n <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "n must be > 0")
	}
	if math.Abs(f.theta) < frankIndepEps {
		return independentUniform(n, 2, src), nil
	}

	th := f.theta
	uni := distuv.Uniform{Min: 0, Max: 1, Src: src}
	em1 := math.Expm1(-th) // e^(-θ)-1

	out := make([][]float64, n)
	for i := range out {
		u := clampUnit(uni.Rand())
		t := clampUnit(uni.Rand())
		// v = C(v|u)^{-1}(t)
		// v = -(1/θ)·ln(1 + t·(1-e^(-θ)) / (t·(e^(-θu)-1) - e^(-θu)))
		eu := math.Exp(-th * u)
		v := -math.Log1p(-t*em1/(t*(eu-1)-eu)) / th
		out[i] = []float64{u, clampUnit(v)}
	}
	return out, nil
}

// LogDensity 二元Frank对数密度
//
//	c(u,v) = θ(1-e^(-θ))·e^(-θ(u+v)) / [ (1-e^(-θ)) - (1-e^(-θu))(1-e^(-θv)) ]^2
func (f *Frank) LogDensity(u []float64) (float64, error) {
	if err := checkUnitPair(u); err != nil {
		return 0, err
	}
	th := f.theta
	if math.Abs(th) < frankIndepEps {
		return 0, nil
	}
	g := func(x float64) float64 { return -math.Expm1(-th * x) } // 1-e^(-θx)
	den := g(1) - g(u[0])*g(u[1])
	// θ(1-e^(-θ))在θ两侧同号, 乘积恒正
	logc := math.Log(th*g(1)) - th*(u[0]+u[1]) - 2*math.Log(math.Abs(den))
	return logc, nil
}

var _ Copula = (*Frank)(nil)
var _ Copula = (*Gumbel)(nil)
var _ Copula = (*Clayton)(nil)
