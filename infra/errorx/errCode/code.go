package errCode

// 数值过程统一错误码
type Code int

const (
	UNKNOWN Code = iota
	EMPTY_VALUE
	INVALID_VALUE
	INVALID_PARAMETER  // 参数越出合法定义域 (θ、转移概率等)
	NON_CONVERGENCE    // 超过最大迭代次数仍未达到容差
	DIMENSION_MISMATCH // 维度不一致 (copula维度/边缘个数、外生变量行数等)
)

func (c Code) String() string {
	switch c {
	case EMPTY_VALUE:
		return "EMPTY_VALUE"
	case INVALID_VALUE:
		return "INVALID_VALUE"
	case INVALID_PARAMETER:
		return "INVALID_PARAMETER"
	case NON_CONVERGENCE:
		return "NON_CONVERGENCE"
	case DIMENSION_MISMATCH:
		return "DIMENSION_MISMATCH"
	default:
		return "UNKNOWN"
	}
}
