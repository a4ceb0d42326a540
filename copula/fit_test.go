package copula

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime/config"
	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
)

func TestThetaFromTauClosedForm(t *testing.T) {
	// gumbel: θ = 1/(1-τ)
	th, err := ThetaFromTau(FAMILY_GUMBEL, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, th, 1e-12)

	// clayton: θ = 2τ/(1-τ)
	th, err = ThetaFromTau(FAMILY_CLAYTON, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, th, 1e-12)

	// independence: τ忽略, θ=0
	th, err = ThetaFromTau(FAMILY_INDEPENDENCE, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, th)
}

func TestThetaFromTauDomainErrors(t *testing.T) {
	// gumbel/clayton不支持负相依
	for _, f := range []Family{FAMILY_GUMBEL, FAMILY_CLAYTON} {
		_, err := ThetaFromTau(f, -0.3)
		require.Error(t, err, f.String())
		assert.True(t, errorx.IsCode(err, errCode.INVALID_PARAMETER))

		// τ→1 处θ发散
		_, err = ThetaFromTau(f, 1.0)
		require.Error(t, err, f.String())
		assert.True(t, errorx.IsCode(err, errCode.NON_CONVERGENCE))
	}

	_, err := ThetaFromTau(FAMILY_FRANK, 0.999)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.NON_CONVERGENCE))
}

// frank: 正反解互逆, τ(θ^{-1}(τ)) = τ
func TestFrankTauRoundTrip(t *testing.T) {
	for _, tau := range []float64{-0.7, -0.3, 0.1, 0.5, 0.8} {
		th, err := frankThetaFromTau(tau)
		require.NoError(t, err)
		assert.InDelta(t, tau, frankTau(th), 1e-8, "tau=%v", tau)
	}
	// τ为奇函数: θ(-τ) = -θ(τ)
	pos, _ := frankThetaFromTau(0.5)
	neg, _ := frankThetaFromTau(-0.5)
	assert.InDelta(t, -pos, neg, 1e-8)
}

func TestDebye1(t *testing.T) {
	// D1(x) → 1 当x→0; 已知值 D1(1) ≈ 0.7775
	assert.InDelta(t, 1.0, debye1(1e-6), 1e-4)
	assert.InDelta(t, 0.77751, debye1(1), 1e-4)
}

// tau矩法从模拟样本反解θ
func TestEstimateThetaRecovery(t *testing.T) {
	cases := []struct {
		family Family
		theta  float64
		tol    float64
	}{
		{FAMILY_GUMBEL, 2.0, 0.3},
		{FAMILY_CLAYTON, 2.0, 0.5},
		{FAMILY_FRANK, 4.0, 1.0},
	}
	for _, tc := range cases {
		c, err := NewCopula(tc.family, tc.theta, 2)
		require.NoError(t, err)
		u, err := c.SampleUniform(2000, rand.NewPCG(42, uint64(tc.family)))
		require.NoError(t, err)

		est, err := EstimateTheta(tc.family, u)
		require.NoError(t, err, tc.family.String())
		assert.InDelta(t, tc.theta, est, tc.tol, tc.family.String())
	}
}

// 伪观测MLE: 对秩变换不变, 直接喂均匀样本即可
func TestFitMLERecovery(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		family Family
		theta  float64
		tol    float64
	}{
		{FAMILY_GUMBEL, 2.0, 0.35},
		{FAMILY_CLAYTON, 2.0, 0.5},
		{FAMILY_FRANK, 4.0, 1.0},
	}
	for _, tc := range cases {
		c, err := NewCopula(tc.family, tc.theta, 2)
		require.NoError(t, err)
		u, err := c.SampleUniform(1500, rand.NewPCG(9, uint64(tc.family)))
		require.NoError(t, err)

		res, err := FitMLE(tc.family, u, cfg)
		require.NoError(t, err, tc.family.String())
		assert.InDelta(t, tc.theta, res.Theta, tc.tol, tc.family.String())
		assert.Greater(t, res.FuncEvals, 0)
		assert.False(t, math.IsNaN(res.LogLik))
	}
}

func TestFitMLEIndependenceRejected(t *testing.T) {
	_, err := FitMLE(FAMILY_INDEPENDENCE, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, config.Default())
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}

func TestPseudoObs(t *testing.T) {
	data := [][]float64{{3, 30}, {1, 10}, {2, 20}}
	u, err := PseudoObs(data)
	require.NoError(t, err)
	// u = rank/(n+1)
	assert.InDelta(t, 0.75, u[0][0], 1e-12)
	assert.InDelta(t, 0.25, u[1][0], 1e-12)
	assert.InDelta(t, 0.50, u[2][0], 1e-12)
	// 两列同序
	for i := range u {
		assert.Equal(t, u[i][0], u[i][1])
	}

	_, err = PseudoObs([][]float64{{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.DIMENSION_MISMATCH))

	_, err = PseudoObs(nil)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.EMPTY_VALUE))
}

func TestKendallTau(t *testing.T) {
	// 完全同序 τ=1, 完全逆序 τ=-1
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	tau, err := KendallTau(x, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tau)

	rev := []float64{10, 8, 6, 4, 2}
	tau, err = KendallTau(x, rev)
	require.NoError(t, err)
	assert.Equal(t, -1.0, tau)

	// NaN成对剔除后不影响结果
	xn := []float64{1, math.NaN(), 2, 3, 4, 5}
	yn := []float64{2, 99, 4, 6, 8, 10}
	tau, err = KendallTau(xn, yn)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tau)

	_, err = KendallTau(x, []float64{1, 2})
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.DIMENSION_MISMATCH))
}
