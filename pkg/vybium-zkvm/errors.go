package vybiumzkvm

import "fmt"

// ErrorCode represents a vybium-zkvm error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrFatalPrecondition represents a violated syscall precondition, such as
	// a misaligned pointer. The VM halts and the run must be discarded.
	ErrFatalPrecondition

	// ErrInternalInvariant represents a broken internal invariant
	ErrInternalInvariant

	// ErrVMExecution represents any other VM execution error
	ErrVMExecution

	// ErrTraceGeneration represents a trace generation error
	ErrTraceGeneration

	// ErrProofVerification represents a rejected shard
	ErrProofVerification

	// ErrInvalidInput represents an invalid input error
	ErrInvalidInput
)

// String returns the name of the code
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "invalid config"
	case ErrFatalPrecondition:
		return "fatal precondition"
	case ErrInternalInvariant:
		return "internal invariant"
	case ErrVMExecution:
		return "vm execution"
	case ErrTraceGeneration:
		return "trace generation"
	case ErrProofVerification:
		return "proof verification"
	case ErrInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// VMError represents a vybium-zkvm error
type VMError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-zkvm error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-zkvm error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *VMError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code ErrorCode, msg string, cause error) *VMError {
	return &VMError{Code: code, Message: msg, Cause: cause}
}
