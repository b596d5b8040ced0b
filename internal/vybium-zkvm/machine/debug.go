package machine

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/operations"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// ErrConstraintsUnsatisfied is the protocol-level rejection of a shard
var ErrConstraintsUnsatisfied = errors.New("proof verification failed")

const transcriptDomain = "vybium-zkvm/debug-constraints"

// ChipReport summarises the table of one chip
type ChipReport struct {
	Name        string
	Height      int
	Log2Height  int
	Width       int
	Commitment  hash.Digest
	Constraints int
}

// Report is the outcome of checking a shard
type Report struct {
	Shard          uint32
	Chips          []ChipReport
	Failures       []air.ConstraintFailure
	InvalidLookups []events.ByteLookupEvent
	BusError       error
}

// OK reports whether every check passed
func (r *Report) OK() bool {
	return len(r.Failures) == 0 && len(r.InvalidLookups) == 0 && r.BusError == nil
}

// DebugConstraints generates the traces of record, commits to them and checks
// every row together with the balance of the memory, byte and syscall buses.
// The other side of each bus is played from the record itself.
func (m *Machine) DebugConstraints(record *events.ExecutionRecord) (*Report, error) {
	traces, byteRecord, err := m.GenerateTraces(record)
	if err != nil {
		return nil, err
	}

	report := &Report{Shard: record.Shard}
	challenger := air.NewChallenger(transcriptDomain)
	challenger.ObserveElements(core.FromUint32(record.Shard))

	for _, tr := range traces {
		root, err := Commit(tr.Matrix)
		if err != nil {
			return nil, fmt.Errorf("failed to commit %s trace: %w", tr.Chip.Name(), err)
		}
		challenger.ObserveDigest(root)
		report.Chips = append(report.Chips, ChipReport{
			Name:       tr.Chip.Name(),
			Height:     tr.Matrix.Height(),
			Log2Height: utils.Log2(tr.Matrix.Height()),
			Width:      tr.Matrix.Width,
			Commitment: root,
		})
	}

	bus := air.NewBus(challenger.Sample(), challenger.Sample())
	m.logger.Debug("sampled bus challenges", "shard", record.Shard, "transcript", challenger.String())
	acc := make(map[air.InteractionKind]field.Element)

	for i, tr := range traces {
		for row := 0; row < tr.Matrix.Height(); row++ {
			checker := air.NewRowChecker(row)
			if err := tr.Chip.EvalRow(checker, tr.Matrix.Row(row)); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", tr.Chip.Name(), row, err)
			}
			report.Chips[i].Constraints += checker.Count()
			report.Failures = append(report.Failures, checker.Failures()...)
			if err := bus.Accumulate(acc, checker.Interactions()); err != nil {
				return nil, err
			}
		}
	}

	external := air.NewRowChecker(-1)
	playSyscalls(external, record)
	playMemory(external, record)
	report.InvalidLookups = playBytes(external, byteRecord)
	if err := bus.Accumulate(acc, external.Interactions()); err != nil {
		return nil, err
	}
	report.BusError = air.CheckBalanced(acc)

	if !report.OK() {
		m.logger.Info("shard rejected",
			"shard", record.Shard,
			"failures", len(report.Failures),
			"invalid_lookups", len(report.InvalidLookups),
			"bus", report.BusError)
		return report, fmt.Errorf("%w: %s", ErrConstraintsUnsatisfied, report.describe())
	}

	for _, c := range report.Chips {
		m.logger.Debug("table checked", "chip", c.Name, "log2_rows", c.Log2Height, "constraints", c.Constraints)
	}
	m.logger.Info("shard verified", "shard", record.Shard, "tables", len(report.Chips))
	return report, nil
}

func (r *Report) describe() string {
	switch {
	case len(r.Failures) > 0:
		return air.Summary(r.Failures, 3)
	case len(r.InvalidLookups) > 0:
		e := r.InvalidLookups[0]
		return fmt.Sprintf("invalid %s lookup (%d, %d, %d)", e.Opcode, e.A, e.B, e.C)
	default:
		return r.BusError.Error()
	}
}

// tableSyscalls lists the codes whose dispatches a chip receives
var tableSyscalls = []events.SyscallCode{events.SyscallUint32Sqr}

func ownsTable(syscallID uint32) bool {
	for _, code := range tableSyscalls {
		if code.SyscallID() == syscallID {
			return code.HasTable()
		}
	}
	return false
}

// playSyscalls sends the dispatch records of every syscall owning a table
func playSyscalls(b air.AirBuilder, record *events.ExecutionRecord) {
	for _, ev := range record.SyscallEvents() {
		if !ownsTable(ev.SyscallID) {
			continue
		}
		b.SendSyscall(
			core.FromUint32(ev.Shard),
			core.FromUint32(ev.Clk),
			core.FromUint32(ev.SyscallID),
			core.FromUint32(ev.Arg1),
			core.FromUint32(ev.Arg2),
			field.One,
		)
	}
}

// playMemory sends the initial state of every touched word and receives its final state
func playMemory(b air.AirBuilder, record *events.ExecutionRecord) {
	for _, entry := range record.PrecompileEvents(events.SyscallUint32Sqr) {
		carrier, ok := entry.Event.(events.LocalMemoryCarrier)
		if !ok {
			continue
		}
		for _, local := range carrier.LocalMemoryEvents() {
			b.SendMemory(operations.MemoryMessage(local.Addr, local.InitialMemAccess), field.One)
			b.ReceiveMemory(operations.MemoryMessage(local.Addr, local.FinalMemAccess), field.One)
		}
	}
}

// playBytes receives every requested byte lookup and returns those the byte
// table would not contain
func playBytes(b air.AirBuilder, byteRecord *events.ExecutionRecord) []events.ByteLookupEvent {
	var invalid []events.ByteLookupEvent
	for _, e := range byteRecord.SortedByteLookups() {
		if !e.Valid() {
			invalid = append(invalid, e)
		}
		b.ReceiveByte(
			field.New(uint64(e.Opcode)),
			core.FromUint32(e.A),
			core.FromUint32(e.B),
			core.FromUint32(e.C),
			field.New(byteRecord.ByteLookups()[e]),
		)
	}
	return invalid
}
