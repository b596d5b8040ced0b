package vybiumzkvm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/syscalls"
)

func TestErrors(t *testing.T) {
	t.Run("VMError", func(t *testing.T) {
		err := newError(ErrInvalidInput, "bad word", nil)
		assert.Equal(t, "vybium-zkvm error [7]: bad word", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("ErrorWrapping", func(t *testing.T) {
		cause := errors.New("boom")
		err := newError(ErrVMExecution, "failed", cause)
		assert.Contains(t, err.Error(), "caused by: boom")
		assert.ErrorIs(t, err, cause)

		wrapped := fmt.Errorf("run: %w", err)
		assert.ErrorIs(t, wrapped, &VMError{Code: ErrVMExecution})
		assert.NotErrorIs(t, wrapped, &VMError{Code: ErrInvalidInput})
	})

	t.Run("CodeNames", func(t *testing.T) {
		assert.Equal(t, "fatal precondition", ErrFatalPrecondition.String())
		assert.Equal(t, "unknown", ErrorCode(99).String())
	})
}

func TestExecutionErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"misaligned", &syscalls.FatalError{Kind: syscalls.FatalMisaligned, Code: events.SyscallUint32Sqr}, ErrFatalPrecondition},
		{"invariant", &syscalls.FatalError{Kind: syscalls.FatalInvariant, Code: events.SyscallUint32Sqr}, ErrInternalInvariant},
		{"halted", fmt.Errorf("%w: earlier failure", syscalls.ErrHalted), ErrVMExecution},
		{"other", errors.New("other"), ErrVMExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executionError(tt.err)
			assert.Equal(t, tt.want, err.Code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
