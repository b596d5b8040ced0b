// Package air defines the row-local constraint interface used by chips and a
// concrete checker that evaluates it over a single trace row.
//
// Expressions are plain field elements: a chip's Eval reads the row values and
// asserts identities on them. Interactions with the global buses are collected
// as messages and balanced separately.
package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// InteractionKind names a global bus
type InteractionKind uint8

const (
	// MemoryBus carries (shard, clk, addr, value bytes) memory states
	MemoryBus InteractionKind = iota + 1
	// ByteBus carries (opcode, a, b, c) byte table requests
	ByteBus
	// SyscallBus carries (shard, clk, syscall id, arg1, arg2) dispatch records
	SyscallBus
)

// String returns the bus name
func (k InteractionKind) String() string {
	switch k {
	case MemoryBus:
		return "memory"
	case ByteBus:
		return "byte"
	case SyscallBus:
		return "syscall"
	default:
		return fmt.Sprintf("bus(%d)", uint8(k))
	}
}

// InteractionScope tells where a bus is balanced. Every bus of a shard
// proof is balanced within the shard.
type InteractionScope uint8

// Local interactions balance within one shard
const Local InteractionScope = 0

// Interaction is a message sent to or received from a bus
type Interaction struct {
	Kind         InteractionKind
	Scope        InteractionScope
	Values       []field.Element
	Multiplicity field.Element
	IsSend       bool
}

// AirBuilder receives the constraints and interactions of one row.
//
// When(cond) returns a builder whose assertions only bind when cond is
// non-zero; interactions carry explicit multiplicities and are not gated.
type AirBuilder interface {
	AssertZero(x field.Element)
	AssertEq(a, b field.Element)
	AssertBool(x field.Element)
	AssertAllEq(a, b []field.Element)
	When(cond field.Element) AirBuilder

	// Named tags the failures of subsequent assertions
	Named(label string) AirBuilder

	SendByte(opcode, a, b, c, multiplicity field.Element)
	ReceiveByte(opcode, a, b, c, multiplicity field.Element)
	SendMemory(values []field.Element, multiplicity field.Element)
	ReceiveMemory(values []field.Element, multiplicity field.Element)
	SendSyscall(shard, clk, syscallID, arg1, arg2, multiplicity field.Element)
	ReceiveSyscall(shard, clk, syscallID, arg1, arg2, multiplicity field.Element)
}
