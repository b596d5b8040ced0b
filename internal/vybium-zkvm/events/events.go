// Package events defines the immutable records produced while executing
// precompiles and the per-shard execution record that stores them.
package events

import (
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/memory"
)

// LookupID correlates a precompile event with the instruction that invoked it
type LookupID uint64

// PrecompileEvent is implemented by every precompile event type
type PrecompileEvent interface {
	// Code returns the syscall that produced the event
	Code() SyscallCode
}

// Uint32SqrEvent is emitted when a uint32 square-mod operation is performed
type Uint32SqrEvent struct {
	// LookupID matches the event to its dispatch record
	LookupID LookupID
	// Shard is the shard the event belongs to
	Shard uint32
	// Clk is the clock cycle of the invocation
	Clk uint32
	// XPtr points to the operand, which is overwritten with the result
	XPtr uint32
	// X is the operand as little-endian words
	X []uint32
	// ModulusPtr points to the modulus
	ModulusPtr uint32
	// Modulus is the modulus as little-endian words
	Modulus []uint32
	// XMemoryRecords are the writes of the result at Clk+1
	XMemoryRecords []memory.MemoryWriteRecord
	// ModulusMemoryRecords are the reads of the modulus at Clk
	ModulusMemoryRecords []memory.MemoryReadRecord
	// LocalMemAccess holds the first and last state of every touched address
	LocalMemAccess []memory.MemoryLocalEvent
}

// Code implements PrecompileEvent
func (e *Uint32SqrEvent) Code() SyscallCode {
	return SyscallUint32Sqr
}

// LocalMemoryEvents implements LocalMemoryCarrier
func (e *Uint32SqrEvent) LocalMemoryEvents() []memory.MemoryLocalEvent {
	return e.LocalMemAccess
}

// LocalMemoryCarrier is implemented by events that touch memory. The global
// memory argument consumes the first and last state of every touched word.
type LocalMemoryCarrier interface {
	LocalMemoryEvents() []memory.MemoryLocalEvent
}

// SyscallEvent is the dispatch bus record of a syscall invocation
type SyscallEvent struct {
	Shard     uint32
	Clk       uint32
	LookupID  LookupID
	SyscallID uint32
	Arg1      uint32
	Arg2      uint32
}

// PrecompileEntry pairs a precompile event with its dispatch record
type PrecompileEntry struct {
	Syscall SyscallEvent
	Event   PrecompileEvent
}
