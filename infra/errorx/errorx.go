package errorx

import (
	"regime/infra/errorx/errCode"

	"github.com/cockroachdb/errors"
)

// 带错误码的error, 用cockroachdb/errors保留调用栈
type codedError struct {
	code  errCode.Code
	cause error
}

func (e *codedError) Error() string {
	return e.code.String() + ": " + e.cause.Error()
}

func (e *codedError) Unwrap() error { return e.cause }

func New(code errCode.Code, msg string) error {
	return &codedError{code: code, cause: errors.New(msg)}
}

func Newf(code errCode.Code, format string, args ...interface{}) error {
	return &codedError{code: code, cause: errors.Newf(format, args...)}
}

// Wrap 保留原错误并打上错误码
func Wrap(code errCode.Code, err error, msg string) error {
	return &codedError{code: code, cause: errors.Wrap(err, msg)}
}

// GetCode 取错误码, 非codedError返回UNKNOWN
func GetCode(err error) errCode.Code {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return errCode.UNKNOWN
}

// IsCode 判断错误链上是否存在指定错误码
func IsCode(err error, code errCode.Code) bool {
	return GetCode(err) == code
}
