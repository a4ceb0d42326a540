package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"regime/infra/errorx/errCode"
)

func TestCodeRoundTrip(t *testing.T) {
	err := New(errCode.INVALID_PARAMETER, "bad theta")
	assert.Equal(t, errCode.INVALID_PARAMETER, GetCode(err))
	assert.True(t, IsCode(err, errCode.INVALID_PARAMETER))
	assert.False(t, IsCode(err, errCode.NON_CONVERGENCE))
	assert.Contains(t, err.Error(), "bad theta")
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := Newf(errCode.NON_CONVERGENCE, "迭代 %d 未收敛", 100)
	outer := fmt.Errorf("fit: %w", inner)
	assert.True(t, IsCode(outer, errCode.NON_CONVERGENCE))

	wrapped := Wrap(errCode.DIMENSION_MISMATCH, errors.New("boom"), "ctx")
	assert.Equal(t, errCode.DIMENSION_MISMATCH, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "ctx")
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, errCode.UNKNOWN, GetCode(errors.New("plain")))
	assert.Equal(t, errCode.UNKNOWN, GetCode(nil))
}
