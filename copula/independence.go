package copula

import (
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
)

// 独立copula: C(u) = Πui, 密度恒为1
type Independence struct {
	dim int
}

func NewIndependence(dim int) (*Independence, error) {
	if dim < 2 {
		return nil, errorx.Newf(errCode.INVALID_VALUE, "dim must be >= 2, got %d", dim)
	}
	return &Independence{dim: dim}, nil
}

func (ic *Independence) Dim() int       { return ic.dim }
func (ic *Independence) Theta() float64 { return 0 }

func (ic *Independence) SampleUniform(n int, src rand.Source) ([][]float64, error) {
	if n <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "n must be > 0")
	}
	return independentUniform(n, ic.dim, src), nil
}

func (ic *Independence) LogDensity(u []float64) (float64, error) {
	if err := checkUnitPair(u); err != nil {
		return 0, err
	}
	return 0, nil
}

var _ Copula = (*Independence)(nil)
