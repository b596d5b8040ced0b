package syscalls

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
)

// FatalKind classifies unrecoverable execution failures
type FatalKind int

const (
	// FatalMisaligned is a pointer argument that is not word aligned
	FatalMisaligned FatalKind = iota

	// FatalInvariant is a violated internal invariant (a programming defect)
	FatalInvariant
)

// String returns the name of the kind
func (k FatalKind) String() string {
	switch k {
	case FatalMisaligned:
		return "misaligned"
	case FatalInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// FatalError halts the run. It is never retried.
type FatalError struct {
	Kind  FatalKind
	Code  events.SyscallCode
	Msg   string
	Cause error
}

// Error returns the error message
func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fatal %s in %s: %s: %v", e.Kind, e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("fatal %s in %s: %s", e.Kind, e.Code, e.Msg)
}

// Unwrap returns the cause of the error
func (e *FatalError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether err carries a FatalError
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// FatalKindOf returns the kind of a fatal error
func FatalKindOf(err error) (FatalKind, bool) {
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return fatal.Kind, true
	}
	return 0, false
}

var (
	// ErrHalted is returned by Dispatch once a fatal error stopped the runtime
	ErrHalted = errors.New("syscalls: runtime halted")

	// ErrShardClockLimit is the cause of a dispatch that would run past MaxShardClk
	ErrShardClockLimit = errors.New("syscalls: shard clock limit reached")
)

func misaligned(code events.SyscallCode, name string, ptr uint32) error {
	return &FatalError{
		Kind: FatalMisaligned,
		Code: code,
		Msg:  fmt.Sprintf("%s 0x%08x is not 4-byte aligned", name, ptr),
	}
}

func invariant(code events.SyscallCode, msg string, cause error) error {
	return &FatalError{Kind: FatalInvariant, Code: code, Msg: msg, Cause: cause}
}
