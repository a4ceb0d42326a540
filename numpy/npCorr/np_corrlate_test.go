package npCorr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelateFull(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	v := []float64{1, 1, 2}
	out, err := Correlate(a, v, FULL_MODE)
	require.NoError(t, err)
	// 卷积索引: out[i] = Σ a[i-j]·v[j]
	assert.Equal(t, []float64{1, 3, 7, 11, 10, 8}, out)
}

func TestCorrelateSameAndValid(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	v := []float64{1, 1, 2}

	same, err := Correlate(a, v, SAME_MODE)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7, 11, 10}, same)

	valid, err := Correlate(a, v, VALID_MODE)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 11}, valid)
}

func TestCorrelateSymmetry(t *testing.T) {
	// 卷积可交换, a与v互换full结果不变
	a := []float64{1, 2, 3, 4, 5}
	v := []float64{2, 0, 1}
	ab, err := Correlate(a, v, FULL_MODE)
	require.NoError(t, err)
	ba, err := Correlate(v, a, FULL_MODE)
	require.NoError(t, err)
	require.Len(t, ba, len(ab))
	for i := range ab {
		assert.Equal(t, ab[i], ba[i])
	}
}

func TestCorrelateInvalid(t *testing.T) {
	_, err := Correlate([]float64{1, 2}, []float64{1, 2, 3}, FULL_MODE)
	assert.Error(t, err)

	_, err = Correlate([]float64{1, 2, 3}, []float64{1, 2, 3}, CORRELATE_MODE(99))
	assert.Error(t, err)

	// valid模式要求 m ≤ n
	_, err = Correlate([]float64{1, 2, 3}, []float64{1, 2, 3, 4}, VALID_MODE)
	assert.Error(t, err)
}
