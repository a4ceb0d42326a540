// Kim平滑
// 终端条件 smooth_T = filt_T, 向后递推:
//
//	smooth_t[i] = filt_t[i]·Σ_j P_{t+1}[i][j]·smooth_{t+1}[j]/pred_{t+1}[j]
package msar

// Smooth 在滤波结果上做向后递推, 返回T×k平滑概率
func (m *Model) Smooth(p *Params, fr *FilterResult) [][]float64 {
	k, T := m.spec.NRegimes, m.T
	smoothed := make([][]float64, T)

	last := make([]float64, k)
	copy(last, fr.Filtered[T-1])
	smoothed[T-1] = last

	for t := T - 2; t >= 0; t-- {
		P := m.transAt(p, t+1)
		row := make([]float64, k)
		sum := 0.0
		for i := 0; i < k; i++ {
			acc := 0.0
			for j := 0; j < k; j++ {
				if fr.Predicted[t+1][j] > 0 {
					acc += P[i][j] * smoothed[t+1][j] / fr.Predicted[t+1][j]
				}
			}
			row[i] = fr.Filtered[t][i] * acc
			sum += row[i]
		}
		// 浮点残差重归一
		if sum > 0 {
			for i := range row {
				row[i] /= sum
			}
		}
		smoothed[t] = row
	}
	return smoothed
}

// pairwise 平滑后相邻期联合概率 ξ_t(i,j) = P(S_{t-1}=i, S_t=j | y_{1..T})
// 返回(T-1)×k×k, 下标t对应(t, t+1)对
func (m *Model) pairwise(p *Params, fr *FilterResult, smoothed [][]float64) [][][]float64 {
	k, T := m.spec.NRegimes, m.T
	xi := make([][][]float64, T-1)
	for t := 0; t < T-1; t++ {
		P := m.transAt(p, t+1)
		block := make([][]float64, k)
		for i := 0; i < k; i++ {
			row := make([]float64, k)
			for j := 0; j < k; j++ {
				if fr.Predicted[t+1][j] > 0 {
					row[j] = fr.Filtered[t][i] * P[i][j] * smoothed[t+1][j] / fr.Predicted[t+1][j]
				}
			}
			block[i] = row
		}
		xi[t] = block
	}
	return xi
}
