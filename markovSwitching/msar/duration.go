package msar

// ExpectedDurations 各regime期望持续期 1/(1-p_ii)
func ExpectedDurations(P [][]float64) []float64 {
	out := make([]float64, len(P))
	for i := range P {
		out[i] = 1 / (1 - P[i][i])
	}
	return out
}

// expectedDurationSeq TVTP的逐期持续期
func expectedDurationSeq(seq [][][]float64) [][]float64 {
	out := make([][]float64, len(seq))
	for t := range seq {
		out[t] = ExpectedDurations(seq[t])
	}
	return out
}
