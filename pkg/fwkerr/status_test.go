package fwkerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsError(t *testing.T) {
	assert.False(t, Success.IsError())
	assert.False(t, Pending.IsError())
	assert.True(t, StateError.IsError())
	assert.True(t, ParamError.IsError())
}

func TestErrorsIsSentinel(t *testing.T) {
	err := New("bind", StateError, nil)
	assert.True(t, errors.Is(err, ErrState))
	assert.False(t, errors.Is(err, ErrParam))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("refused")
	err := New("process_bind_request", HandlerError, cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "refused")
}
