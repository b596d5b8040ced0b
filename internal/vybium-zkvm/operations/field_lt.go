package operations

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
)

// ErrNotLess is returned when populating a comparison whose lhs is not below rhs
var ErrNotLess = errors.New("operations: lhs is not less than rhs")

// FieldLtCols proves lhs < rhs for byte limb values. The flag marks the most
// significant byte where the values differ; that byte pair goes through the
// LTU byte lookup and all more significant bytes must be equal.
type FieldLtCols struct {
	ByteFlags         [U32NumLimbs]field.Element
	LhsComparisonByte field.Element
	RhsComparisonByte field.Element
}

// NumFieldLtCols is the column count of FieldLtCols
const NumFieldLtCols = U32NumLimbs + 2

// Populate fills the columns and requests the LTU lookup
func (cols *FieldLtCols) Populate(record events.ByteRecord, shard uint32, lhs, rhs *uint256.Int) error {
	if !lhs.Lt(rhs) {
		return ErrNotLess
	}
	l := core.Uint256ToBytesLE(lhs, U32NumLimbs)
	r := core.Uint256ToBytesLE(rhs, U32NumLimbs)
	for i := U32NumLimbs - 1; i >= 0; i-- {
		if l[i] == r[i] {
			continue
		}
		cols.ByteFlags[i] = field.One
		cols.LhsComparisonByte = field.New(uint64(l[i]))
		cols.RhsComparisonByte = field.New(uint64(r[i]))
		record.AddByteLookupEvent(events.ByteLookupEvent{
			Shard:  shard,
			Opcode: events.ByteLTU,
			A:      1,
			B:      uint32(l[i]),
			C:      uint32(r[i]),
		})
		return nil
	}
	return ErrNotLess
}

// Eval asserts lhs < rhs when isReal is one
func (cols FieldLtCols) Eval(builder air.AirBuilder, lhs, rhs []field.Element, isReal field.Element) {
	b := builder.Named("field_lt")

	visited := field.Zero
	lhsByte := field.Zero
	rhsByte := field.Zero
	for i := U32NumLimbs - 1; i >= 0; i-- {
		flag := cols.ByteFlags[i]
		b.AssertBool(flag)
		visited = visited.Add(flag)
		lhsByte = lhsByte.Add(lhs[i].Mul(flag))
		rhsByte = rhsByte.Add(rhs[i].Mul(flag))
		b.When(isReal).When(field.One.Sub(visited)).AssertEq(lhs[i], rhs[i])
	}

	b.AssertEq(visited, isReal)
	b.When(isReal).AssertEq(cols.LhsComparisonByte, lhsByte)
	b.When(isReal).AssertEq(cols.RhsComparisonByte, rhsByte)

	builder.SendByte(byteOpcode(events.ByteLTU), field.One, cols.LhsComparisonByte, cols.RhsComparisonByte, isReal)
}
