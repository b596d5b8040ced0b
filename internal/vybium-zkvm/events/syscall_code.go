package events

import "fmt"

// SyscallCode identifies a precompile.
//
// Byte 0 is the syscall id, byte 1 is 1 when the syscall has its own trace
// table and byte 2 is the number of extra cycles charged on top of the base
// instruction cost.
type SyscallCode uint32

const (
	// SyscallUint32Sqr squares a word modulo a word, writing over the operand
	SyscallUint32Sqr SyscallCode = 0x00_01_01_32
)

// SyscallID returns the id byte carried on the dispatch bus
func (c SyscallCode) SyscallID() uint32 {
	return uint32(c) & 0xFF
}

// HasTable reports whether the syscall owns a trace table
func (c SyscallCode) HasTable() bool {
	return (uint32(c)>>8)&0xFF == 1
}

// NumExtraCycles returns the extra cycles encoded in the code
func (c SyscallCode) NumExtraCycles() uint32 {
	return (uint32(c) >> 16) & 0xFF
}

// String returns the name of the syscall
func (c SyscallCode) String() string {
	switch c {
	case SyscallUint32Sqr:
		return "UINT32_SQR"
	default:
		return fmt.Sprintf("SYSCALL(0x%08x)", uint32(c))
	}
}
