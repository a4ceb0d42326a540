package myTools

import "math"

// ArrMean 算术平均, 空切片返回NaN
func ArrMean(arr []float64) float64 {
	if len(arr) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range arr {
		sum += v
	}
	return sum / float64(len(arr))
}

// MaskIsNaNBoth 同步剔除两序列中任一方为NaN的位置
func MaskIsNaNBoth(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	mx := make([]float64, 0, n)
	my := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		mx = append(mx, x[i])
		my = append(my, y[i])
	}
	return mx, my
}

// ReverseSliceF64 返回逆序副本
func ReverseSliceF64(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for i, v := range x {
		out[n-1-i] = v
	}
	return out
}

// WelfordVariancePopulation Welford单遍历总体方差
func WelfordVariancePopulation(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	var mean, m2 float64
	for i, v := range x {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	return m2 / float64(len(x))
}
