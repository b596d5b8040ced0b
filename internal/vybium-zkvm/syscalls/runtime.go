// Package syscalls executes precompiles natively against VM memory and emits
// the events later consumed by trace generation.
package syscalls

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/memory"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// InstructionCycles is the clock advance of every instruction
const InstructionCycles = 4

// MaxShardClk is the last clock a shard may reach. Memory columns store the
// gap between two accesses to a word in 24 bits.
const MaxShardClk = core.MaxClkDiff

// Syscall is the native implementation of a precompile
type Syscall interface {
	// Execute runs the syscall. The bool reports whether a value is returned.
	Execute(ctx *SyscallContext, code events.SyscallCode, arg1, arg2 uint32) (uint32, bool, error)

	// NumExtraCycles is the clock cost on top of InstructionCycles
	NumExtraCycles() uint32
}

// DefaultSyscalls returns the syscall table of the VM
func DefaultSyscalls() map[events.SyscallCode]Syscall {
	return map[events.SyscallCode]Syscall{
		events.SyscallUint32Sqr: Uint32SqrSyscall{},
	}
}

// Runtime is the slice of the VM that dispatches syscalls: it owns memory, the
// clock and the execution record of the current shard.
type Runtime struct {
	Memory *memory.Memory
	Record *events.ExecutionRecord
	Clk    uint32

	syscalls     map[events.SyscallCode]Syscall
	nextLookupID events.LookupID
	halted       error
	logger       *slog.Logger
}

// NewRuntime creates a runtime for a shard. Shards are numbered from 1 so that
// shard 0 is reserved for the initial memory image.
func NewRuntime(mem *memory.Memory, shard uint32, logger *slog.Logger) *Runtime {
	if mem == nil {
		mem = memory.New()
	}
	return &Runtime{
		Memory:       mem,
		Record:       events.NewExecutionRecord(shard),
		Clk:          0,
		syscalls:     DefaultSyscalls(),
		nextLookupID: 1,
		logger:       utils.ModuleLogger(logger, utils.ExecutorModule),
	}
}

// Register installs or replaces a syscall implementation
func (rt *Runtime) Register(code events.SyscallCode, sc Syscall) {
	rt.syscalls[code] = sc
}

// Shard returns the current shard
func (rt *Runtime) Shard() uint32 {
	return rt.Record.Shard
}

// Halted returns the fatal error that stopped the runtime, or nil
func (rt *Runtime) Halted() error {
	return rt.halted
}

// Dispatch executes one syscall instruction with two register arguments.
// A fatal error halts the runtime; later dispatches fail with ErrHalted.
func (rt *Runtime) Dispatch(code events.SyscallCode, arg1, arg2 uint32) (uint32, error) {
	if rt.halted != nil {
		return 0, fmt.Errorf("%w: %v", ErrHalted, rt.halted)
	}

	sc, ok := rt.syscalls[code]
	if !ok {
		return rt.halt(invariant(code, "no syscall registered", nil))
	}

	cycles := InstructionCycles + sc.NumExtraCycles()
	if uint64(rt.Clk)+uint64(cycles) > MaxShardClk {
		return rt.halt(invariant(code,
			fmt.Sprintf("clock %d + %d passes the shard limit %d", rt.Clk, cycles, MaxShardClk),
			ErrShardClockLimit))
	}

	ctx := &SyscallContext{
		rt:       rt,
		Clk:      rt.Clk,
		LookupID: rt.nextLookupID,
		local:    make(map[uint32]*memory.MemoryLocalEvent),
	}
	rt.nextLookupID++

	ret, _, err := sc.Execute(ctx, code, arg1, arg2)
	if err != nil {
		ctx.abort()
		if !IsFatal(err) {
			err = invariant(code, "syscall returned a non-fatal error", err)
		}
		return rt.halt(err)
	}

	rt.Clk += cycles
	rt.logger.Log(context.Background(), utils.LevelTrace, "syscall executed",
		"code", code, "lookup_id", ctx.LookupID, "clk", ctx.Clk, "arg1", arg1, "arg2", arg2)
	return ret, nil
}

func (rt *Runtime) halt(err error) (uint32, error) {
	rt.halted = err
	rt.logger.Error("runtime halted", "err", err)
	return 0, err
}

// SyscallContext is the view of the runtime handed to a single syscall
type SyscallContext struct {
	rt *Runtime

	// Clk is the clock of the invocation. Syscalls may advance it to order
	// their own accesses; the runtime clock is advanced by the declared cost.
	Clk uint32

	// LookupID correlates the syscall's events with its dispatch record
	LookupID events.LookupID

	local  map[uint32]*memory.MemoryLocalEvent
	leases []*memory.Lease
}

// Shard returns the current shard
func (ctx *SyscallContext) Shard() uint32 {
	return ctx.rt.Shard()
}

func (ctx *SyscallContext) touch(addr uint32, rec memory.MemoryAccessRecord) {
	ev, ok := ctx.local[addr]
	if !ok {
		ev = &memory.MemoryLocalEvent{Addr: addr, InitialMemAccess: rec.Previous()}
		ctx.local[addr] = ev
	}
	ev.FinalMemAccess = rec.Current()
}

// Peek reads n words at ptr without a consistency record and leases them
// until MwSlice commits the result.
func (ctx *SyscallContext) Peek(ptr uint32, n int) (*memory.Lease, error) {
	lease, err := ctx.rt.Memory.Peek(ptr, n)
	if err != nil {
		return nil, err
	}
	ctx.leases = append(ctx.leases, lease)
	return lease, nil
}

// MrSlice performs recorded reads of n words at ptr
func (ctx *SyscallContext) MrSlice(ptr uint32, n int) ([]memory.MemoryReadRecord, []uint32, error) {
	records := make([]memory.MemoryReadRecord, n)
	values := make([]uint32, n)
	for i := 0; i < n; i++ {
		addr := ptr + uint32(4*i)
		rec, err := ctx.rt.Memory.Read(ctx.Shard(), ctx.Clk, addr)
		if err != nil {
			return nil, nil, err
		}
		ctx.touch(addr, rec)
		records[i] = rec
		values[i] = rec.Value
	}
	return records, values, nil
}

// MwSlice commits values over a leased range at the current clock
func (ctx *SyscallContext) MwSlice(lease *memory.Lease, values []uint32) ([]memory.MemoryWriteRecord, error) {
	records, err := lease.Commit(ctx.Shard(), ctx.Clk, values)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		ctx.touch(lease.Addr()+uint32(4*i), rec)
	}
	return records, nil
}

// Postprocess returns the local memory events of the invocation ordered by address
func (ctx *SyscallContext) Postprocess() []memory.MemoryLocalEvent {
	out := make([]memory.MemoryLocalEvent, 0, len(ctx.local))
	for _, ev := range ctx.local {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// SyscallEvent builds the dispatch record of the invocation
func (ctx *SyscallContext) SyscallEvent(code events.SyscallCode, arg1, arg2 uint32) events.SyscallEvent {
	return events.SyscallEvent{
		Shard:     ctx.Shard(),
		Clk:       ctx.rt.Clk,
		LookupID:  ctx.LookupID,
		SyscallID: code.SyscallID(),
		Arg1:      arg1,
		Arg2:      arg2,
	}
}

// AddPrecompileEvent stores the event and sends its dispatch record
func (ctx *SyscallContext) AddPrecompileEvent(code events.SyscallCode, syscall events.SyscallEvent, event events.PrecompileEvent) {
	ctx.rt.Record.AddSyscallEvent(syscall)
	ctx.rt.Record.AddPrecompileEvent(code, syscall, event)
}

func (ctx *SyscallContext) abort() {
	for _, lease := range ctx.leases {
		_ = lease.Release()
	}
}
