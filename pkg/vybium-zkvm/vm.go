package vybiumzkvm

import (
	"errors"
	"log/slog"
	"os"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/machine"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/memory"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/syscalls"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// VM is the public interface of the vybium zkVM precompile core
type VM interface {
	// StoreWord seeds a word of the initial memory image. It fails once
	// execution has started.
	StoreWord(addr, value uint32) error

	// LoadWord returns the current value of a word
	LoadWord(addr uint32) (uint32, error)

	// SqrMod squares the word at xPtr modulo the word at modulusPtr in place.
	// A zero modulus means 2^32.
	SqrMod(xPtr, modulusPtr uint32) error

	// Record returns the events emitted so far
	Record() *ExecutionRecord

	// GenerateTrace builds and commits the trace of every included table
	GenerateTrace() (*TraceSummary, error)

	// Verify checks every trace row and the balance of all buses
	Verify() (*Report, error)

	// GetState returns the current VM state
	GetState() *VMState
}

// vmImpl is the internal implementation of VM
type vmImpl struct {
	config  *Config
	runtime *syscalls.Runtime
	machine *machine.Machine
	logger  *slog.Logger
}

// NewVM creates a VM logging to stderr at the configured level
func NewVM(config *Config) (VM, error) {
	if config == nil {
		config = DefaultConfig()
	}
	logger, err := utils.NewLogger(config.LogLevel, os.Stderr)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "invalid log level", err)
	}
	return NewVMWithLogger(config, logger)
}

// NewVMWithLogger creates a VM using the given logger
func NewVMWithLogger(config *Config, logger *slog.Logger) (VM, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid configuration", err)
	}
	config = config.Clone()

	rt := syscalls.NewRuntime(memory.New(), config.Shard, logger)
	if len(config.FixedLog2Rows) > 0 {
		rt.Record.Shape = &events.Shape{Log2Rows: config.FixedLog2Rows}
	}

	return &vmImpl{
		config:  config,
		runtime: rt,
		machine: machine.NewPrecompileMachine(config.ChunkSize, config.Workers, logger),
		logger:  logger,
	}, nil
}

func (v *vmImpl) started() bool {
	return v.runtime.Clk != 0 || v.runtime.Halted() != nil
}

func (v *vmImpl) StoreWord(addr, value uint32) error {
	if v.started() {
		return newError(ErrInvalidInput, "memory image is sealed once execution starts", nil)
	}
	if err := v.runtime.Memory.Init(addr, value); err != nil {
		return newError(ErrInvalidInput, "cannot store word", err)
	}
	return nil
}

func (v *vmImpl) LoadWord(addr uint32) (uint32, error) {
	value, err := v.runtime.Memory.Load(addr)
	if err != nil {
		return 0, newError(ErrInvalidInput, "cannot load word", err)
	}
	return value, nil
}

func (v *vmImpl) SqrMod(xPtr, modulusPtr uint32) error {
	if _, err := v.runtime.Dispatch(events.SyscallUint32Sqr, xPtr, modulusPtr); err != nil {
		return executionError(err)
	}
	return nil
}

// executionError maps a dispatch failure onto an error code
func executionError(err error) *VMError {
	if errors.Is(err, syscalls.ErrHalted) {
		return newError(ErrVMExecution, "VM is halted", err)
	}
	kind, ok := syscalls.FatalKindOf(err)
	switch {
	case ok && kind == syscalls.FatalMisaligned:
		return newError(ErrFatalPrecondition, "syscall precondition violated", err)
	case ok && kind == syscalls.FatalInvariant:
		return newError(ErrInternalInvariant, "internal invariant violated", err)
	default:
		return newError(ErrVMExecution, "VM execution failed", err)
	}
}

func (v *vmImpl) Record() *ExecutionRecord {
	return v.runtime.Record
}

func (v *vmImpl) GenerateTrace() (*TraceSummary, error) {
	record := v.runtime.Record
	traces, byteRecord, err := v.machine.GenerateTraces(record)
	if err != nil {
		return nil, newError(ErrTraceGeneration, "trace generation failed", err)
	}

	summary := &TraceSummary{
		Shard:  record.Shard,
		Tables: make([]TableSummary, 0, len(traces)),
		Stats:  record.Stats(),
	}
	for _, tr := range traces {
		root, err := machine.Commit(tr.Matrix)
		if err != nil {
			return nil, newError(ErrTraceGeneration, "trace commitment failed", err)
		}
		summary.Tables = append(summary.Tables, TableSummary{
			Name:       tr.Chip.Name(),
			Height:     tr.Matrix.Height(),
			Width:      tr.Matrix.Width,
			Commitment: DigestHex(root),
		})
	}
	for k, n := range byteRecord.Stats() {
		if k == "byte_lookups" || k == "byte_lookups_unique" {
			summary.Stats[k] = n
		}
	}
	return summary, nil
}

func (v *vmImpl) Verify() (*Report, error) {
	report, err := v.machine.DebugConstraints(v.runtime.Record)
	if errors.Is(err, machine.ErrConstraintsUnsatisfied) {
		return report, newError(ErrProofVerification, "shard rejected", err)
	}
	if err != nil {
		return nil, newError(ErrTraceGeneration, "trace generation failed", err)
	}
	return report, nil
}

func (v *vmImpl) GetState() *VMState {
	return &VMState{
		Shard:    v.runtime.Shard(),
		Clk:      v.runtime.Clk,
		Syscalls: len(v.runtime.Record.SyscallEvents()),
		Halted:   v.runtime.Halted() != nil,
	}
}
