package vybiumzkvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

func newTestVM(t *testing.T, config *Config) VM {
	t.Helper()
	vm, err := NewVMWithLogger(config, utils.DiscardLogger())
	require.NoError(t, err)
	return vm
}

func TestVMCreation(t *testing.T) {
	t.Run("NewVM", func(t *testing.T) {
		vm, err := NewVM(DefaultConfig().WithLogLevel("error"))
		require.NoError(t, err)
		assert.Equal(t, uint32(1), vm.GetState().Shard)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		_, err := NewVM(DefaultConfig().WithWorkers(0))
		assert.ErrorIs(t, err, &VMError{Code: ErrInvalidConfig})

		_, err = NewVM(DefaultConfig().WithLogLevel("loud"))
		assert.ErrorIs(t, err, &VMError{Code: ErrInvalidConfig})
	})
}

func TestVMSqrMod(t *testing.T) {
	tests := []struct {
		name       string
		x, modulus uint32
		want       uint32
	}{
		{"small", 3, 5, 4},
		{"zero modulus wraps", 0xFFFFFFFF, 0, 1},
		{"modulus one", 0xFFFFFFFF, 1, 0},
		{"max modulus", 0x12345678, 0xFFFFFFFF, uint32(uint64(0x12345678) * 0x12345678 % 0xFFFFFFFF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, DefaultConfig())
			require.NoError(t, vm.StoreWord(0x100, tt.x))
			require.NoError(t, vm.StoreWord(0x104, tt.modulus))
			require.NoError(t, vm.SqrMod(0x100, 0x104))

			got, err := vm.LoadWord(0x100)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			m, err := vm.LoadWord(0x104)
			require.NoError(t, err)
			assert.Equal(t, tt.modulus, m)

			report, err := vm.Verify()
			require.NoError(t, err)
			assert.True(t, report.OK())
		})
	}
}

func TestVMRepeatedSquaring(t *testing.T) {
	vm := newTestVM(t, DefaultConfig().WithChunkSize(2))
	const modulus = 1_000_003
	require.NoError(t, vm.StoreWord(0x200, 2))
	require.NoError(t, vm.StoreWord(0x204, modulus))

	want := uint64(2)
	for i := 0; i < 9; i++ {
		require.NoError(t, vm.SqrMod(0x200, 0x204))
		want = want * want % modulus
	}
	got, err := vm.LoadWord(0x200)
	require.NoError(t, err)
	assert.Equal(t, uint32(want), got)

	state := vm.GetState()
	assert.Equal(t, 9, state.Syscalls)
	assert.Equal(t, uint32(9*5), state.Clk)
	assert.False(t, state.Halted)

	summary, err := vm.GenerateTrace()
	require.NoError(t, err)
	require.Len(t, summary.Tables, 1)
	assert.Equal(t, Uint32SqrChip, summary.Tables[0].Name)
	assert.Equal(t, 16, summary.Tables[0].Height)
	assert.NotEmpty(t, summary.Tables[0].Commitment)
	assert.Positive(t, summary.Stats["byte_lookups"])

	_, err = vm.Verify()
	assert.NoError(t, err)
}

func TestVMMisalignedPointerHalts(t *testing.T) {
	vm := newTestVM(t, DefaultConfig())
	require.NoError(t, vm.StoreWord(0x100, 3))
	require.NoError(t, vm.StoreWord(0x104, 5))

	err := vm.SqrMod(0x102, 0x104)
	assert.ErrorIs(t, err, &VMError{Code: ErrFatalPrecondition})
	assert.True(t, vm.GetState().Halted)
	assert.Empty(t, vm.Record().SyscallEvents())

	x, err := vm.LoadWord(0x100)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), x)

	err = vm.SqrMod(0x100, 0x104)
	assert.ErrorIs(t, err, &VMError{Code: ErrVMExecution})

	err = vm.StoreWord(0x108, 1)
	assert.ErrorIs(t, err, &VMError{Code: ErrInvalidInput})
}

func TestVMMemoryAccess(t *testing.T) {
	vm := newTestVM(t, DefaultConfig())
	assert.ErrorIs(t, vm.StoreWord(0x101, 1), &VMError{Code: ErrInvalidInput})
	_, err := vm.LoadWord(0x103)
	assert.ErrorIs(t, err, &VMError{Code: ErrInvalidInput})

	v, err := vm.LoadWord(0x400)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestVMFixedShape(t *testing.T) {
	vm := newTestVM(t, DefaultConfig().WithFixedLog2Rows(Uint32SqrChip, 3))

	summary, err := vm.GenerateTrace()
	require.NoError(t, err)
	require.Len(t, summary.Tables, 1)
	assert.Equal(t, 8, summary.Tables[0].Height)

	report, err := vm.Verify()
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestVMEmptyShard(t *testing.T) {
	vm := newTestVM(t, DefaultConfig())
	summary, err := vm.GenerateTrace()
	require.NoError(t, err)
	assert.Empty(t, summary.Tables)
}

func TestVMTamperedRecordIsRejected(t *testing.T) {
	vm := newTestVM(t, DefaultConfig())
	require.NoError(t, vm.StoreWord(0x100, 3))
	require.NoError(t, vm.StoreWord(0x104, 5))
	require.NoError(t, vm.SqrMod(0x100, 0x104))

	entries := vm.Record().PrecompileEvents(events.SyscallUint32Sqr)
	require.Len(t, entries, 1)
	ev := entries[0].Event.(*events.Uint32SqrEvent)
	ev.XMemoryRecords[0].Value = 2
	ev.LocalMemAccess[0].FinalMemAccess.Value = 2

	report, err := vm.Verify()
	assert.ErrorIs(t, err, &VMError{Code: ErrProofVerification})
	require.NotNil(t, report)
	assert.False(t, report.OK())
}
