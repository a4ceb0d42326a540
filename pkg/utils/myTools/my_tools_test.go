package myTools

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrMean(t *testing.T) {
	assert.Equal(t, 2.0, ArrMean([]float64{1, 2, 3}))
	assert.True(t, math.IsNaN(ArrMean(nil)))
}

func TestMaskIsNaNBoth(t *testing.T) {
	x := []float64{1, math.NaN(), 3, 4}
	y := []float64{5, 6, math.NaN(), 8}
	mx, my := MaskIsNaNBoth(x, y)
	assert.Equal(t, []float64{1, 4}, mx)
	assert.Equal(t, []float64{5, 8}, my)
}

func TestReverseSliceF64(t *testing.T) {
	x := []float64{1, 2, 3}
	assert.Equal(t, []float64{3, 2, 1}, ReverseSliceF64(x))
	// 原切片不变
	assert.Equal(t, []float64{1, 2, 3}, x)
}

func TestWelfordVariancePopulation(t *testing.T) {
	// 总体方差 E[x²]-E[x]²
	assert.InDelta(t, 2.0, WelfordVariancePopulation([]float64{1, 2, 3, 4, 5}), 1e-12)
	assert.Equal(t, 0.0, WelfordVariancePopulation([]float64{7, 7, 7}))
	assert.True(t, math.IsNaN(WelfordVariancePopulation(nil)))
}