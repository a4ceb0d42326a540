package ols

import (
	"math"
	"regime/infra/errorx"
	"regime/infra/errorx/errCode"

	"gonum.org/v1/gonum/mat"
)

// 加权最小二乘结果
type WeightedLinearModel struct {
	Coeffs []float64 // 回归系数
	Resids []float64 // 未加权残差
	Sigma2 float64   // 加权残差方差 Σwe²/Σw
	WSum   float64   // 权重和
}

// WeightedRegressionMat 求解 β = (X'WX)^(-1) X'Wy, W=diag(w)
// w为非负权重 (EM的平滑后regime概率), 不要求归一化
func WeightedRegressionMat(matX *mat.Dense, matY *mat.VecDense, w []float64) (WeightedLinearModel, error) {
	n, k := matX.Dims()
	if matY.Len() != n || len(w) != n {
		return WeightedLinearModel{}, errorx.New(errCode.DIMENSION_MISMATCH, "X行数、Y长度、权重长度不一致")
	}

	wSum := 0.0
	for _, v := range w {
		if v < 0 || math.IsNaN(v) {
			return WeightedLinearModel{}, errorx.New(errCode.INVALID_VALUE, "权重必须非负")
		}
		wSum += v
	}
	if wSum <= 0 {
		return WeightedLinearModel{}, errorx.New(errCode.INVALID_VALUE, "权重全为零")
	}

	// X'W 直接按行缩放X'
	var XT mat.Dense
	XT.CloneFrom(matX.T())
	XTW := mat.NewDense(k, n, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < n; j++ {
			XTW.Set(i, j, XT.At(i, j)*w[j])
		}
	}

	var XTWX mat.Dense
	XTWX.Mul(XTW, matX)

	var invXTWX mat.Dense
	err := invXTWX.Inverse(&XTWX)
	if err != nil {
		pinv, errSVD := pseudoInverse(&XTWX)
		if errSVD != nil {
			return WeightedLinearModel{}, errSVD
		}
		invXTWX.CloneFrom(pinv)
	}

	var XTWY mat.VecDense
	XTWY.MulVec(XTW, matY)

	var beta mat.VecDense
	beta.MulVec(&invXTWX, &XTWY)

	// 残差与加权方差
	Yhat := mat.NewVecDense(n, nil)
	Yhat.MulVec(matX, &beta)
	resid := make([]float64, n)
	wrss := 0.0
	for i := 0; i < n; i++ {
		resid[i] = matY.AtVec(i) - Yhat.AtVec(i)
		wrss += w[i] * resid[i] * resid[i]
	}

	coeffs := make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
	}
	return WeightedLinearModel{
		Coeffs: coeffs,
		Resids: resid,
		Sigma2: wrss / wSum,
		WSum:   wSum,
	}, nil
}
