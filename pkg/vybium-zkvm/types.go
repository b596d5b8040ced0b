package vybiumzkvm

import (
	"fmt"
	"strings"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/chips"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/machine"
)

// ExecutionRecord holds the events emitted by a run
type ExecutionRecord = events.ExecutionRecord

// Report is the outcome of checking a shard
type Report = machine.Report

// Uint32SqrChip is the name of the UINT32_SQR table, usable in Config.FixedLog2Rows
const Uint32SqrChip = chips.Uint32SqrChipName

// VMState represents the current state of the VM (read-only)
type VMState struct {
	// Shard being executed
	Shard uint32

	// Clock of the next instruction
	Clk uint32

	// Number of dispatched syscalls
	Syscalls int

	// Halted is set once a fatal error stopped the VM
	Halted bool
}

// TableSummary describes one generated trace table
type TableSummary struct {
	Name   string
	Height int
	Width  int

	// Commitment is the hex encoded Merkle root of the rows
	Commitment string
}

// TraceSummary represents the generated traces of a shard
type TraceSummary struct {
	Shard  uint32
	Tables []TableSummary

	// Stats counts the events of the record and the byte lookups of the traces
	Stats map[string]int
}

// DigestHex encodes a digest as big-endian hex limbs
func DigestHex(d hash.Digest) string {
	var sb strings.Builder
	for _, e := range d {
		fmt.Fprintf(&sb, "%016x", e.Value())
	}
	return sb.String()
}
