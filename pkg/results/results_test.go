package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](42)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.Equal(t, 42, *ok.Success)

	boom := errors.New("boom")
	failed := FailureResult[int, error](boom)
	assert.True(t, failed.IsFailure())
	assert.False(t, failed.IsSuccess())
	assert.ErrorIs(t, *failed.Failure, boom)

	var empty OperationResult[int, error]
	assert.False(t, empty.IsSuccess())
	assert.False(t, empty.IsFailure())
}

func TestMap(t *testing.T) {
	double := func(v int) string { return string(rune('a' + v*2)) }

	mapped := Map(SuccessResult[int, error](1), double)
	assert.Equal(t, "c", *mapped.Success)

	boom := errors.New("boom")
	failed := Map(FailureResult[int, error](boom), double)
	assert.Nil(t, failed.Success)
	assert.ErrorIs(t, *failed.Failure, boom)

	empty := Map(OperationResult[int, error]{}, double)
	assert.False(t, empty.IsSuccess())
	assert.False(t, empty.IsFailure())
}
