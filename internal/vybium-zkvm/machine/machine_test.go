package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/chips"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/memory"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/syscalls"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

type call struct {
	xPtr, mPtr uint32
}

func run(t *testing.T, init map[uint32]uint32, calls []call) *events.ExecutionRecord {
	t.Helper()
	mem := memory.New()
	for addr, v := range init {
		require.NoError(t, mem.Init(addr, v))
	}
	rt := syscalls.NewRuntime(mem, 1, utils.DiscardLogger())
	for _, c := range calls {
		_, err := rt.Dispatch(events.SyscallUint32Sqr, c.xPtr, c.mPtr)
		require.NoError(t, err)
	}
	return rt.Record
}

func newTestMachine() *Machine {
	return NewPrecompileMachine(2, 2, utils.DiscardLogger())
}

func TestDebugConstraintsAcceptsExecution(t *testing.T) {
	tests := []struct {
		name  string
		init  map[uint32]uint32
		calls []call
	}{
		{
			name:  "single",
			init:  map[uint32]uint32{0x100: 3, 0x104: 5},
			calls: []call{{0x100, 0x104}},
		},
		{
			name:  "zero modulus",
			init:  map[uint32]uint32{0x100: 0xFFFFFFFF, 0x104: 0},
			calls: []call{{0x100, 0x104}},
		},
		{
			name:  "aliased pointers",
			init:  map[uint32]uint32{0x100: 9},
			calls: []call{{0x100, 0x100}},
		},
		{
			name: "repeated squaring",
			init: map[uint32]uint32{0x100: 2, 0x104: 1_000_003},
			calls: []call{
				{0x100, 0x104}, {0x100, 0x104}, {0x100, 0x104}, {0x100, 0x104}, {0x100, 0x104},
			},
		},
		{
			name: "shared modulus",
			init: map[uint32]uint32{0x100: 7, 0x108: 11, 0x110: 0},
			calls: []call{
				{0x100, 0x110}, {0x108, 0x110}, {0x100, 0x108},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := run(t, tt.init, tt.calls)
			report, err := newTestMachine().DebugConstraints(record)
			require.NoError(t, err)
			require.True(t, report.OK())
			require.Len(t, report.Chips, 1)
			assert.Equal(t, chips.Uint32SqrChipName, report.Chips[0].Name)
			assert.Equal(t, utils.NextPowerOfTwo(len(tt.calls)), report.Chips[0].Height)
			assert.Positive(t, report.Chips[0].Constraints)
		})
	}
}

func TestDebugConstraintsEmptyShard(t *testing.T) {
	record := events.NewExecutionRecord(1)
	report, err := newTestMachine().DebugConstraints(record)
	require.NoError(t, err)
	assert.Empty(t, report.Chips)

	record.Shape = &events.Shape{Log2Rows: map[string]int{chips.Uint32SqrChipName: 2}}
	report, err = newTestMachine().DebugConstraints(record)
	require.NoError(t, err)
	require.Len(t, report.Chips, 1)
	assert.Equal(t, 4, report.Chips[0].Height)
	assert.Equal(t, 2, report.Chips[0].Log2Height)
}

func TestPlaySyscallsSkipsTablelessDispatches(t *testing.T) {
	record := run(t, map[uint32]uint32{0x100: 3, 0x104: 5}, []call{{0x100, 0x104}})
	// no chip receives this id, sending it would unbalance the syscall bus
	record.AddSyscallEvent(events.SyscallEvent{Shard: 1, Clk: 9, SyscallID: 0x99, Arg1: 0x100, Arg2: 0x104})

	c := air.NewRowChecker(-1)
	playSyscalls(c, record)
	assert.Len(t, c.Interactions(), 1)

	report, err := newTestMachine().DebugConstraints(record)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestDroppedSyscallUnbalancesBus(t *testing.T) {
	executed := run(t, map[uint32]uint32{0x100: 3, 0x104: 5}, []call{{0x100, 0x104}})

	// keep the precompile row but lose its dispatch record
	record := events.NewExecutionRecord(1)
	for _, e := range executed.PrecompileEvents(events.SyscallUint32Sqr) {
		record.AddPrecompileEvent(events.SyscallUint32Sqr, e.Syscall, e.Event)
	}

	report, err := newTestMachine().DebugConstraints(record)
	require.ErrorIs(t, err, ErrConstraintsUnsatisfied)
	assert.Empty(t, report.Failures)
	assert.ErrorIs(t, report.BusError, air.ErrBusImbalance)
	assert.Contains(t, report.BusError.Error(), "syscall")
}

func TestTamperedMemoryUnbalancesBus(t *testing.T) {
	record := run(t, map[uint32]uint32{0x100: 3, 0x104: 5}, []call{{0x100, 0x104}})
	ev := record.PrecompileEvents(events.SyscallUint32Sqr)[0].Event.(*events.Uint32SqrEvent)
	ev.LocalMemAccess[0].InitialMemAccess.Value = 4

	report, err := newTestMachine().DebugConstraints(record)
	require.ErrorIs(t, err, ErrConstraintsUnsatisfied)
	assert.Contains(t, report.BusError.Error(), "memory")
}

func TestWrongResultIsRejected(t *testing.T) {
	record := run(t, map[uint32]uint32{0x100: 3, 0x104: 5}, []call{{0x100, 0x104}})
	ev := record.PrecompileEvents(events.SyscallUint32Sqr)[0].Event.(*events.Uint32SqrEvent)
	ev.XMemoryRecords[0].Value = 2
	ev.LocalMemAccess[0].FinalMemAccess.Value = 2

	report, err := newTestMachine().DebugConstraints(record)
	require.ErrorIs(t, err, ErrConstraintsUnsatisfied)
	assert.NotEmpty(t, report.Failures)
	assert.Contains(t, err.Error(), "proof verification failed")
}

func TestPlayBytesFlagsInvalidLookups(t *testing.T) {
	record := events.NewExecutionRecord(1)
	record.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.ByteU8Range, B: 3})
	record.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.ByteU8Range, B: 300})
	record.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.ByteLTU, A: 1, B: 9, C: 2})

	c := air.NewRowChecker(0)
	invalid := playBytes(c, record)
	assert.Len(t, invalid, 2)
	assert.Len(t, c.Interactions(), 3)
}

func TestCommit(t *testing.T) {
	values := make([]field.Element, 8)
	for i := range values {
		values[i] = field.New(uint64(i))
	}
	m, err := chips.NewRowMajorMatrix(values, 2)
	require.NoError(t, err)

	a, err := Commit(m)
	require.NoError(t, err)
	b, err := Commit(m)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	values[3] = field.New(99)
	c, err := Commit(m)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	odd, err := chips.NewRowMajorMatrix(make([]field.Element, 6), 2)
	require.NoError(t, err)
	_, err = Commit(odd)
	assert.Error(t, err)

	single, err := chips.NewRowMajorMatrix(make([]field.Element, 2), 2)
	require.NoError(t, err)
	_, err = Commit(single)
	assert.NoError(t, err)
}

func TestLargestClockGapVerifies(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.Init(0x100, 3))
	require.NoError(t, mem.Init(0x104, 5))
	rt := syscalls.NewRuntime(mem, 1, utils.DiscardLogger())

	_, err := rt.Dispatch(events.SyscallUint32Sqr, 0x100, 0x104)
	require.NoError(t, err)

	// the last instruction that fits in the shard
	rt.Clk = syscalls.MaxShardClk - syscalls.InstructionCycles - events.SyscallUint32Sqr.NumExtraCycles()
	_, err = rt.Dispatch(events.SyscallUint32Sqr, 0x100, 0x104)
	require.NoError(t, err)

	report, err := newTestMachine().DebugConstraints(rt.Record)
	require.NoError(t, err)
	assert.True(t, report.OK())

	_, err = rt.Dispatch(events.SyscallUint32Sqr, 0x100, 0x104)
	assert.ErrorIs(t, err, syscalls.ErrShardClockLimit)
}
