package copula

import (
	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
	"regime/pkg/utils/myTools"
)

// KendallTau 样本Kendall tau (tau-a, 假定连续数据无结点)
//
//	τ = (一致对数 - 不一致对数) / C(n,2)
func KendallTau(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, errorx.Newf(errCode.DIMENSION_MISMATCH, "x长度 %d 与y长度 %d 不一致", len(x), len(y))
	}
	mx, my := myTools.MaskIsNaNBoth(x, y)
	n := len(mx)
	if n < 2 {
		return 0, errorx.New(errCode.EMPTY_VALUE, "有效样本不足")
	}

	conc := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := mx[i] - mx[j]
			dy := my[i] - my[j]
			switch {
			case dx*dy > 0:
				conc++
			case dx*dy < 0:
				conc--
			}
		}
	}
	return 2 * float64(conc) / float64(n*(n-1)), nil
}
