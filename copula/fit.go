// theta估计: Kendall tau矩法反解 + 伪观测极大似然
package copula

import (
	"math"
	"sort"

	"regime/config"
	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
	"regime/infra/observe/staticLog"

	"gonum.org/v1/gonum/optimize"
)

// EstimateTheta tau矩法: 对二元数据算样本Kendall tau, 按族闭式/数值反解θ
//
//	gumbel:  τ = 1 - 1/θ      ⇒ θ = 1/(1-τ), 要求τ ≥ 0
//	clayton: τ = θ/(θ+2)      ⇒ θ = 2τ/(1-τ), 要求τ ≥ 0
//	frank:   τ = 1 - 4/θ·(1-D1(θ)), 二分法数值反解
func EstimateTheta(f Family, data [][]float64) (float64, error) {
	x, y, err := splitBivariate(data)
	if err != nil {
		return 0, err
	}
	tau, err := KendallTau(x, y)
	if err != nil {
		return 0, err
	}
	return ThetaFromTau(f, tau)
}

// ThetaFromTau 按族从tau反解θ
func ThetaFromTau(f Family, tau float64) (float64, error) {
	switch f {
	case FAMILY_GUMBEL:
		if tau < 0 {
			return 0, errorx.Newf(errCode.INVALID_PARAMETER, "gumbel不支持负相依, τ=%v", tau)
		}
		if tau >= 1 {
			return 0, errorx.Newf(errCode.NON_CONVERGENCE, "τ=%v 处θ发散", tau)
		}
		return 1 / (1 - tau), nil
	case FAMILY_CLAYTON:
		if tau < 0 {
			return 0, errorx.Newf(errCode.INVALID_PARAMETER, "clayton不支持负相依, τ=%v", tau)
		}
		if tau >= 1 {
			return 0, errorx.Newf(errCode.NON_CONVERGENCE, "τ=%v 处θ发散", tau)
		}
		return 2 * tau / (1 - tau), nil
	case FAMILY_FRANK:
		return frankThetaFromTau(tau)
	case FAMILY_INDEPENDENCE:
		return 0, nil
	default:
		return 0, errorx.Newf(errCode.INVALID_VALUE, "未知copula族: %d", f)
	}
}

// frank: τ(θ) = 1 - 4/θ·(1-D1(θ)), 奇函数, 对|τ|二分后补符号
func frankThetaFromTau(tau float64) (float64, error) {
	if math.Abs(tau) < 1e-10 {
		return 0, nil
	}
	target := math.Abs(tau)
	const thetaMax = 200.0
	if target >= frankTau(thetaMax) {
		return 0, errorx.Newf(errCode.NON_CONVERGENCE, "|τ|=%v 超出可反解范围", target)
	}

	lo, hi := 1e-6, thetaMax
	const tol = 1e-10
	const maxIter = 200
	var mid float64
	for i := 0; i < maxIter; i++ {
		mid = 0.5 * (lo + hi)
		if frankTau(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < tol {
			if tau < 0 {
				return -mid, nil
			}
			return mid, nil
		}
	}
	return 0, errorx.New(errCode.NON_CONVERGENCE, "frank tau反解二分未收敛")
}

func frankTau(theta float64) float64 {
	return 1 - 4/theta*(1-debye1(theta))
}

// Debye函数 D1(x) = (1/x)∫0^x t/(e^t-1) dt, Simpson复化求积
func debye1(x float64) float64 {
	const panels = 400
	h := x / panels
	f := func(t float64) float64 {
		if math.Abs(t) < 1e-12 {
			return 1 // lim t/(e^t-1) = 1
		}
		return t / math.Expm1(t)
	}
	sum := f(0) + f(x)
	for i := 1; i < panels; i++ {
		t := float64(i) * h
		if i%2 == 1 {
			sum += 4 * f(t)
		} else {
			sum += 2 * f(t)
		}
	}
	return sum * h / 3 / x
}

// MLE拟合结果
type MLEResult struct {
	Theta     float64
	LogLik    float64
	FuncEvals int
}

// FitMLE 伪观测极大似然: u = rank/(n+1), 对变换域参数做Nelder-Mead
// 初值取tau矩法估计, 失败时退回族默认
func FitMLE(f Family, data [][]float64, cfg config.FitConfig) (MLEResult, error) {
	if f == FAMILY_INDEPENDENCE {
		return MLEResult{}, errorx.New(errCode.INVALID_VALUE, "独立copula无参数可拟合")
	}
	uobs, err := PseudoObs(data)
	if err != nil {
		return MLEResult{}, err
	}

	theta0, err := EstimateTheta(f, data)
	if err != nil {
		// tau反解不可用时用族内安全初值
		theta0 = defaultTheta(f)
	}
	par0 := []float64{thetaToPar(f, theta0)}

	problem := optimize.Problem{
		Func: func(par []float64) float64 {
			c, err := NewCopula(f, parToTheta(f, par[0]), 2)
			if err != nil {
				return math.Inf(1)
			}
			ll := 0.0
			for _, u := range uobs {
				l, err := c.LogDensity(u)
				if err != nil || math.IsNaN(l) {
					return math.Inf(1)
				}
				ll += l
			}
			return -ll
		},
	}

	settings := &optimize.Settings{
		MajorIterations: cfg.MLEMaxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.MLETol,
			Iterations: 100,
		},
	}
	result, err := optimize.Minimize(problem, par0, settings, &optimize.NelderMead{})
	if err != nil {
		return MLEResult{}, errorx.Wrap(errCode.NON_CONVERGENCE, err, "copula MLE失败")
	}
	if result.Status == optimize.IterationLimit {
		return MLEResult{}, errorx.Newf(errCode.NON_CONVERGENCE,
			"copula MLE超过最大迭代 %d", cfg.MLEMaxIter)
	}

	theta := parToTheta(f, result.X[0])
	staticLog.Log.Debugf("copula MLE family=%s theta=%.6f loglik=%.4f evals=%d",
		f, theta, -result.F, result.Stats.FuncEvaluations)
	return MLEResult{
		Theta:     theta,
		LogLik:    -result.F,
		FuncEvals: result.Stats.FuncEvaluations,
	}, nil
}

// 无约束域 <-> 参数定义域
func parToTheta(f Family, par float64) float64 {
	switch f {
	case FAMILY_GUMBEL:
		return 1 + math.Exp(par)
	case FAMILY_CLAYTON:
		return math.Exp(par)
	default: // frank无约束
		return par
	}
}

func thetaToPar(f Family, theta float64) float64 {
	switch f {
	case FAMILY_GUMBEL:
		if theta <= 1+1e-8 {
			theta = 1 + 1e-3
		}
		return math.Log(theta - 1)
	case FAMILY_CLAYTON:
		if theta < 1e-3 {
			theta = 1e-3
		}
		return math.Log(theta)
	default:
		return theta
	}
}

func defaultTheta(f Family) float64 {
	switch f {
	case FAMILY_GUMBEL:
		return 1.5
	case FAMILY_CLAYTON:
		return 1.0
	default:
		return 2.0
	}
}

// PseudoObs 伪观测: 逐列按秩变换 u = rank/(n+1)
func PseudoObs(data [][]float64) ([][]float64, error) {
	x, y, err := splitBivariate(data)
	if err != nil {
		return nil, err
	}
	n := len(x)
	ux := rankUnit(x)
	uy := rankUnit(y)
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{ux[i], uy[i]}
	}
	return out, nil
}

func rankUnit(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	out := make([]float64, n)
	for r, i := range idx {
		out[i] = float64(r+1) / float64(n+1)
	}
	return out
}

func splitBivariate(data [][]float64) (x, y []float64, err error) {
	if len(data) == 0 {
		return nil, nil, errorx.New(errCode.EMPTY_VALUE, "数据为空")
	}
	x = make([]float64, len(data))
	y = make([]float64, len(data))
	for i, row := range data {
		if len(row) != 2 {
			return nil, nil, errorx.Newf(errCode.DIMENSION_MISMATCH,
				"第%d行宽度 %d, 期望2", i, len(row))
		}
		x[i], y[i] = row[0], row[1]
	}
	return x, y, nil
}
