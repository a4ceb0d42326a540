package msar

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
)

// 两regime错位均值的模拟序列, 滤波/平滑测试共用
func simTwoRegime(t *testing.T, n int, seed uint64) ([]float64, *Params) {
	t.Helper()
	p, err := ParamsFromDirect([]float64{0, 5}, nil, []float64{1, 1}, testTransMat)
	require.NoError(t, err)
	y, _, err := Simulate(p, 0, n, 100, rand.NewPCG(seed, seed+1))
	require.NoError(t, err)
	return y, p
}

func TestFilterProbabilitiesSimplex(t *testing.T) {
	y, p := simTwoRegime(t, 400, 17)
	m := testModel(t, y, Spec{NRegimes: 2, Order: 0})

	fr, err := m.Filter(p)
	require.NoError(t, err)
	require.Len(t, fr.Filtered, m.NObs())
	require.Len(t, fr.Predicted, m.NObs())
	require.Len(t, fr.LogLikObs, m.NObs())

	for t0 := 0; t0 < m.NObs(); t0++ {
		var fs, ps float64
		for s := 0; s < 2; s++ {
			assert.GreaterOrEqual(t, fr.Filtered[t0][s], 0.0)
			assert.LessOrEqual(t, fr.Filtered[t0][s], 1.0)
			fs += fr.Filtered[t0][s]
			ps += fr.Predicted[t0][s]
		}
		assert.InDelta(t, 1.0, fs, 1e-9, "filtered t=%d", t0)
		assert.InDelta(t, 1.0, ps, 1e-9, "predicted t=%d", t0)
	}

	// 总对数似然 = 各期贡献之和
	sum := 0.0
	for _, l := range fr.LogLikObs {
		sum += l
	}
	assert.InDelta(t, fr.LogLik, sum, 1e-8)
	assert.False(t, math.IsNaN(fr.LogLik))
}

func TestFilterParamCheck(t *testing.T) {
	y, p := simTwoRegime(t, 200, 23)
	m := testModel(t, y, Spec{NRegimes: 2, Order: 0})

	bad := &Params{
		Mu:        p.Mu,
		AR:        p.AR,
		Sigma2:    []float64{1, -1},
		TransCoef: p.TransCoef,
	}
	_, err := m.Filter(bad)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_PARAMETER))

	short := &Params{
		Mu:        []float64{0},
		AR:        [][]float64{{}},
		Sigma2:    []float64{1},
		TransCoef: [][]float64{{}},
	}
	_, err = m.Filter(short)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.DIMENSION_MISMATCH))
}

func TestSmootherSimplexAndTerminal(t *testing.T) {
	y, p := simTwoRegime(t, 400, 31)
	m := testModel(t, y, Spec{NRegimes: 2, Order: 0})

	fr, err := m.Filter(p)
	require.NoError(t, err)
	sm := m.Smooth(p, fr)
	require.Len(t, sm, m.NObs())

	T := m.NObs()
	for t0 := 0; t0 < T; t0++ {
		sum := 0.0
		for s := 0; s < 2; s++ {
			assert.GreaterOrEqual(t, sm[t0][s], 0.0)
			assert.LessOrEqual(t, sm[t0][s], 1.0)
			sum += sm[t0][s]
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "smoothed t=%d", t0)
	}
	// 末期平滑概率等于滤波概率
	for s := 0; s < 2; s++ {
		assert.InDelta(t, fr.Filtered[T-1][s], sm[T-1][s], 1e-12)
	}
}

// 真实参数下, 平滑概率应能基本还原隐regime路径
func TestSmootherRecoversStates(t *testing.T) {
	p, err := ParamsFromDirect([]float64{0, 5}, nil, []float64{1, 1}, testTransMat)
	require.NoError(t, err)
	y, states, err := Simulate(p, 0, 500, 100, rand.NewPCG(41, 42))
	require.NoError(t, err)

	m := testModel(t, y, Spec{NRegimes: 2, Order: 0})
	fr, err := m.Filter(p)
	require.NoError(t, err)
	sm := m.Smooth(p, fr)

	hit := 0
	for t0 := range sm {
		est := 0
		if sm[t0][1] > sm[t0][0] {
			est = 1
		}
		if est == states[t0] {
			hit++
		}
	}
	// 均值相距5个标准差, 判别准确率应很高
	assert.Greater(t, float64(hit)/float64(len(sm)), 0.9)
}

func TestEMImprovesLogLik(t *testing.T) {
	y, _ := simTwoRegime(t, 500, 53)
	m := testModel(t, y, Spec{NRegimes: 2, Order: 0})

	// 从偏离真值的起点出发
	start, err := ParamsFromDirect([]float64{1, 3.5}, nil, []float64{2, 2},
		[][]float64{{0.7, 0.3}, {0.3, 0.7}})
	require.NoError(t, err)
	ll0, err := m.LogLik(start)
	require.NoError(t, err)

	emr, err := m.EM(start, 100, 1e-6)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, emr.LogLik, ll0-1e-8)
	assert.Greater(t, emr.Iterations, 0)

	// 多迭代不应更差
	emr2, err := m.EM(start, 5, 1e-10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, emr.LogLik, emr2.LogLik-1e-6)
}

func TestEMRejectsTVTP(t *testing.T) {
	n := 120
	y := make([]float64, n)
	exog := make([][]float64, n)
	for i := range y {
		y[i] = math.Sin(float64(i) * 0.3)
		exog[i] = []float64{1.0}
	}
	m := testModel(t, y, Spec{NRegimes: 2, Order: 0, Exog: exog})
	p, err := m.startParams()
	require.NoError(t, err)

	_, err = m.EM(p, 50, 1e-6)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}
