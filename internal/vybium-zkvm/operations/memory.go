package operations

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/memory"
)

// ErrClkDiff is a memory access whose gap to the previous access is zero or
// does not fit the diff limbs
var ErrClkDiff = errors.New("operations: memory access gap out of range")

// MemoryAccessCols holds the state after an access and the timestamp that
// preceded it. The access must be strictly later than the previous one: the
// difference minus one is split into a 16-bit and an 8-bit limb.
type MemoryAccessCols struct {
	Value      Word
	PrevShard  field.Element
	PrevClk    field.Element
	CompareClk field.Element
	DiffLow16  field.Element
	DiffHigh8  field.Element
}

// NumMemoryAccessCols is the column count of MemoryAccessCols
const NumMemoryAccessCols = core.WordSize + 5

// MemoryReadCols are the columns of a read
type MemoryReadCols struct {
	Access MemoryAccessCols
}

// NumMemoryReadCols is the column count of MemoryReadCols
const NumMemoryReadCols = NumMemoryAccessCols

// MemoryWriteCols are the columns of a write
type MemoryWriteCols struct {
	PrevValue Word
	Access    MemoryAccessCols
}

// NumMemoryWriteCols is the column count of MemoryWriteCols
const NumMemoryWriteCols = core.WordSize + NumMemoryAccessCols

func (cols *MemoryAccessCols) populate(current, prev memory.MemoryRecord, record events.ByteRecord) error {
	sameShard := current.Shard == prev.Shard
	prevTime, curTime := prev.Shard, current.Shard
	if sameShard {
		prevTime, curTime = prev.Timestamp, current.Timestamp
	}
	if curTime <= prevTime || curTime-prevTime-1 >= core.MaxClkDiff {
		return fmt.Errorf("%w: previous (%d, %d), current (%d, %d)",
			ErrClkDiff, prev.Shard, prev.Timestamp, current.Shard, current.Timestamp)
	}

	cols.Value = WordFromUint32(current.Value)
	cols.PrevShard = core.FromUint32(prev.Shard)
	cols.PrevClk = core.FromUint32(prev.Timestamp)
	cols.CompareClk = core.FromBool(sameShard)

	diffMinusOne := curTime - prevTime - 1
	low16 := uint16(diffMinusOne & 0xFFFF)
	high8 := uint8((diffMinusOne >> 16) & 0xFF)
	cols.DiffLow16 = field.New(uint64(low16))
	cols.DiffHigh8 = field.New(uint64(high8))

	events.AddU16RangeCheck(record, current.Shard, low16)
	events.AddU8RangeCheck(record, current.Shard, high8, 0)
	b := core.WordBytes(current.Value)
	events.AddU8RangeChecks(record, current.Shard, b[:])
	return nil
}

// Populate fills the columns from a read record
func (cols *MemoryReadCols) Populate(rec memory.MemoryReadRecord, record events.ByteRecord) error {
	return cols.Access.populate(rec.Current(), rec.Previous(), record)
}

// Populate fills the columns from a write record
func (cols *MemoryWriteCols) Populate(rec memory.MemoryWriteRecord, record events.ByteRecord) error {
	cols.PrevValue = WordFromUint32(rec.PrevValue)
	return cols.Access.populate(rec.Current(), rec.Previous(), record)
}

// PrevValue returns the value observed before the read
func (cols MemoryReadCols) PrevValue() Word {
	return cols.Access.Value
}

func memoryMessage(shard, clk, addr field.Element, value Word) []field.Element {
	return append([]field.Element{shard, clk, addr}, value[:]...)
}

// EvalMemoryAccess checks timestamp ordering of an access at (shard, clk) and
// moves the word from its previous state to the new one on the memory bus.
func EvalMemoryAccess(
	builder air.AirBuilder,
	shard, clk, addr field.Element,
	cols MemoryAccessCols,
	prevValue Word,
	isReal field.Element,
) {
	b := builder.Named("memory")
	b.AssertBool(cols.CompareClk)
	b.When(isReal).When(cols.CompareClk).AssertEq(shard, cols.PrevShard)

	notCompare := field.One.Sub(cols.CompareClk)
	prevTime := cols.CompareClk.Mul(cols.PrevClk).Add(notCompare.Mul(cols.PrevShard))
	curTime := cols.CompareClk.Mul(clk).Add(notCompare.Mul(shard))
	diffMinusOne := curTime.Sub(prevTime).Sub(field.One)
	b.When(isReal).AssertEq(diffMinusOne, cols.DiffLow16.Add(cols.DiffHigh8.Mul(field.New(1<<16))))

	builder.SendByte(byteOpcode(events.ByteU16Range), cols.DiffLow16, field.Zero, field.Zero, isReal)
	builder.SendByte(byteOpcode(events.ByteU8Range), field.Zero, cols.DiffHigh8, field.Zero, isReal)
	SendU8RangeChecks(builder, cols.Value[:], isReal)

	builder.ReceiveMemory(memoryMessage(cols.PrevShard, cols.PrevClk, addr, prevValue), isReal)
	builder.SendMemory(memoryMessage(shard, clk, addr, cols.Value), isReal)
}

// MemoryMessage is the memory bus message of a word state
func MemoryMessage(addr uint32, rec memory.MemoryRecord) []field.Element {
	return memoryMessage(core.FromUint32(rec.Shard), core.FromUint32(rec.Timestamp), core.FromUint32(addr), WordFromUint32(rec.Value))
}
