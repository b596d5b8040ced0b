package syscalls

import (
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
)

// Uint32SqrWords is the operand width of UINT32_SQR in words
const Uint32SqrWords = 1

// Uint32SqrSyscall computes x*x mod modulus and writes the result over x.
// A zero modulus stands for 2^32.
type Uint32SqrSyscall struct{}

// NumExtraCycles implements Syscall
func (Uint32SqrSyscall) NumExtraCycles() uint32 {
	return events.SyscallUint32Sqr.NumExtraCycles()
}

// Execute implements Syscall. arg1 is x_ptr and arg2 is modulus_ptr.
func (Uint32SqrSyscall) Execute(ctx *SyscallContext, code events.SyscallCode, arg1, arg2 uint32) (uint32, bool, error) {
	xPtr, modulusPtr := arg1, arg2
	if xPtr%4 != 0 {
		return 0, false, misaligned(code, "x_ptr", xPtr)
	}
	if modulusPtr%4 != 0 {
		return 0, false, misaligned(code, "modulus_ptr", modulusPtr)
	}

	clk := ctx.Clk

	// x is overwritten below, so it is only peeked here
	lease, err := ctx.Peek(xPtr, Uint32SqrWords)
	if err != nil {
		return 0, false, invariant(code, "peek x", err)
	}
	x := lease.Words()

	modulusRecords, modulus, err := ctx.MrSlice(modulusPtr, Uint32SqrWords)
	if err != nil {
		return 0, false, invariant(code, "read modulus", err)
	}

	result := core.SquareMod(core.Uint256FromWordsLE(x), core.Uint256FromWordsLE(modulus))
	resultWords := core.Uint256ToWordsLE(result, Uint32SqrWords)

	// the write lands one cycle after the modulus read
	ctx.Clk++
	xRecords, err := ctx.MwSlice(lease, resultWords)
	if err != nil {
		return 0, false, invariant(code, "write result", err)
	}

	event := &events.Uint32SqrEvent{
		LookupID:             ctx.LookupID,
		Shard:                ctx.Shard(),
		Clk:                  clk,
		XPtr:                 xPtr,
		X:                    x,
		ModulusPtr:           modulusPtr,
		Modulus:              modulus,
		XMemoryRecords:       xRecords,
		ModulusMemoryRecords: modulusRecords,
		LocalMemAccess:       ctx.Postprocess(),
	}
	ctx.AddPrecompileEvent(code, ctx.SyscallEvent(code, arg1, arg2), event)

	return 0, false, nil
}

// SqrMod is the reference semantics of UINT32_SQR on plain values
func SqrMod(x, modulus uint32) uint32 {
	sq := uint64(x) * uint64(x)
	if modulus == 0 {
		return uint32(sq)
	}
	return uint32(sq % uint64(modulus))
}

