// 拟合后诊断: 标准化残差应近似白噪声
package msar

import (
	"math/rand/v2"

	"regime/infra/errorx"
	"regime/infra/errorx/errCode"
	"regime/timeSeries/acf"

	"github.com/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Ljung-Box检验
// 给定残差序列, 样本长度n, 滞后阶数lags
// 样本自相关系数: rk = Σ((rt - rmean)(rt-k - rmean)) / Σ((rt - rmean)^2)
// Ljung-Box统计量: Q = n(n+2)Σ(rk^2/(n-k))  k=1~lags
// Q服从自由度为lags的卡方分布
// output: reject 是否拒绝原假设(残差白噪声); Q 统计量; pValue p值
func LjungBoxTest(resid []float64, lags int, alpha float64) (reject bool, Q float64, pValue float64, err error) {
	n := float64(len(resid))
	if lags <= 0 || alpha <= 0 || alpha >= 1 {
		return false, 0, 0, errorx.New(errCode.INVALID_VALUE, "lags与alpha不合法")
	}
	if n <= float64(lags) {
		return false, 0, 0, errorx.New(errCode.INVALID_VALUE, "样本量过小, 无法进行Ljung-Box检验")
	}
	rmean := stat.Mean(resid, nil)
	r := make([]float64, lags+1)
	var denom float64
	for _, v := range resid {
		denom += (v - rmean) * (v - rmean)
	}
	if denom == 0 {
		return false, 0, 0, errorx.New(errCode.INVALID_VALUE, "残差方差为零")
	}
	for k := 1; k <= lags; k++ {
		var num float64
		for t := k; t < len(resid); t++ {
			num += (resid[t] - rmean) * (resid[t-k] - rmean)
		}
		r[k] = num / denom
	}

	for k := 1; k <= lags; k++ {
		Q += r[k] * r[k] / (n - float64(k))
	}
	Q = n * (n + 2) * Q

	chi2 := distuv.ChiSquared{K: float64(lags)}
	pValue = 1 - chi2.CDF(Q)
	// p值小于显著性水平 => 拒绝白噪声假设, 残差仍有自相关
	reject = pValue < alpha
	return reject, Q, pValue, nil
}

// ResidACF 标准化残差的自相关函数
func (r *Result) ResidACF(maxLag int) ([]float64, error) {
	return acf.AutoCorrSingeSegment(r.StdResids, maxLag)
}

// SimulatedACF 模型隐含的自相关: 独立模拟paths条路径, 按段合并算ACF
// 与观测序列的样本ACF对照, 检查拟合参数是否复现序列的记忆结构
func SimulatedACF(p *Params, order, paths, n, maxLag int, seed uint64) ([]float64, error) {
	if paths <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "paths must be > 0")
	}
	segs := make([][]float64, paths)
	for i := 0; i < paths; i++ {
		y, _, err := Simulate(p, order, n, 50, rand.NewPCG(seed, uint64(i)))
		if err != nil {
			return nil, err
		}
		segs[i] = y
	}
	ms, err := acf.NewMultiSeg(segs)
	if err != nil {
		return nil, err
	}
	return ms.AutoCorrSegmentsFFT(maxLag)
}

// ImpliedACF 拟合结果版本, 用估计参数与估计阶数模拟
func (r *Result) ImpliedACF(paths, n, maxLag int, seed uint64) ([]float64, error) {
	return SimulatedACF(r.Params, len(r.Params.AR[0]), paths, n, maxLag, seed)
}

// ResidLjungBox 标准化残差的Ljung-Box白噪声检验
func (r *Result) ResidLjungBox(lags int, alpha float64) (reject bool, Q float64, pValue float64, err error) {
	return LjungBoxTest(r.StdResids, lags, alpha)
}
