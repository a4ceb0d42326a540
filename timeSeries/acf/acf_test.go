package acf

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
)

func ar1Path(phi float64, n int, rng *rand.Rand) []float64 {
	y := make([]float64, n)
	for i := 1; i < n; i++ {
		y[i] = phi*y[i-1] + rng.NormFloat64()
	}
	return y
}

func TestAutoCorrSingeSegmentWhiteNoise(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	wn := make([]float64, 2000)
	for i := range wn {
		wn[i] = rng.NormFloat64()
	}

	acf, err := AutoCorrSingeSegment(wn, 20)
	require.NoError(t, err)
	require.Len(t, acf, 20)
	assert.InDelta(t, 1.0, acf[0], 1e-9)
	// 白噪声高阶自相关 ~ O(1/√n)
	for k := 1; k < len(acf); k++ {
		assert.Less(t, math.Abs(acf[k]), 0.1, "lag=%d", k)
	}
}

func TestAutoCorrSingeSegmentAR1(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	y := ar1Path(0.8, 5000, rng)

	acf, err := AutoCorrSingeSegment(y, 5)
	require.NoError(t, err)
	// AR(1)理论ACF: ρ_k = φ^k
	for k := 1; k < 5; k++ {
		assert.InDelta(t, math.Pow(0.8, float64(k)), acf[k], 0.06, "lag=%d", k)
	}
}

func TestAutoCorrSingeSegmentInvalid(t *testing.T) {
	_, err := AutoCorrSingeSegment(nil, 5)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.EMPTY_VALUE))

	_, err = AutoCorrSingeSegment([]float64{1, 2, 3}, 0)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}

// 多段合并: 各段同分布时合并ACF应与理论值一致
func TestAutoCorrSegmentsPooled(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	segs := make([][]float64, 5)
	for i := range segs {
		segs[i] = ar1Path(0.8, 1000, rng)
	}

	s, err := NewMultiSeg(segs)
	require.NoError(t, err)
	acf, err := s.AutoCorrSegments(5)
	require.NoError(t, err)
	require.Len(t, acf, 5)
	assert.InDelta(t, 1.0, acf[0], 0.02)
	for k := 1; k < 5; k++ {
		assert.InDelta(t, math.Pow(0.8, float64(k)), acf[k], 0.06, "lag=%d", k)
	}
}

// 并行与串行结果一致
func TestAutoCorrSegmentsParallelAgrees(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	segs := make([][]float64, 4)
	for i := range segs {
		segs[i] = ar1Path(0.5, 600, rng)
	}
	s, err := NewMultiSeg(segs)
	require.NoError(t, err)

	direct, err := s.AutoCorrSegments(30)
	require.NoError(t, err)
	par, err := s.AutoCorrSegmentsParallel(30)
	require.NoError(t, err)
	require.Len(t, par, len(direct))
	for k := range direct {
		assert.InDelta(t, direct[k], par[k], 1e-12, "lag=%d", k)
	}
}

// FFT卷积加速与逐lag直接计算一致
func TestAutoCorrSegmentsFFTAgrees(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	segs := make([][]float64, 3)
	for i := range segs {
		segs[i] = ar1Path(0.6, 512, rng)
	}
	s, err := NewMultiSeg(segs)
	require.NoError(t, err)

	direct, err := s.AutoCorrSegments(40)
	require.NoError(t, err)
	fft, err := s.AutoCorrSegmentsFFT(40)
	require.NoError(t, err)
	require.Len(t, fft, len(direct))
	for k := range direct {
		assert.InDelta(t, direct[k], fft[k], 1e-8, "lag=%d", k)
	}
}

func TestNewMultiSegInvalid(t *testing.T) {
	_, err := NewMultiSeg(nil)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.EMPTY_VALUE))

	// 零方差
	_, err = NewMultiSeg([][]float64{{1, 1, 1}})
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}
