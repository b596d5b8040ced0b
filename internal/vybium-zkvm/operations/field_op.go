package operations

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
)

const (
	// U32NumLimbs is the number of byte limbs of a U32Field element
	U32NumLimbs = 4

	// U32NumCarryLimbs bounds the quotient of a 64-bit product by any non-zero
	// word modulus, which can reach 2^64 when the modulus is 1.
	U32NumCarryLimbs = 8

	// U32NumWitnessLimbs is the length of the quotient of the vanishing
	// polynomial by (x - 256)
	U32NumWitnessLimbs = U32NumCarryLimbs + U32NumLimbs + 1 - 2
)

// FieldParams describes an emulated field as byte limbs
type FieldParams struct {
	NumLimbs        int
	NumCarryLimbs   int
	NumWitnessLimbs int
	// ModulusBytes is the default modulus, little-endian
	ModulusBytes []byte
	// WitnessOffset shifts signed witness coefficients into [0, 2^16)
	WitnessOffset uint64
}

// U32Field is the word field whose default modulus is 2^32
var U32Field = FieldParams{
	NumLimbs:        U32NumLimbs,
	NumCarryLimbs:   U32NumCarryLimbs,
	NumWitnessLimbs: U32NumWitnessLimbs,
	ModulusBytes:    core.WordModulusBytes,
	WitnessOffset:   1 << 14,
}

// Modulus returns the default modulus
func (p FieldParams) Modulus() *uint256.Int {
	return core.Uint256FromBytesLE(p.ModulusBytes)
}

// ModulusPolynomial returns the default modulus as a constant limb polynomial
func (p FieldParams) ModulusPolynomial() *core.Polynomial {
	return core.NewPolynomial(core.FromBytes(p.ModulusBytes))
}

// FieldOperation selects the arithmetic checked by FieldOpCols
type FieldOperation uint8

const (
	// FieldOperationAdd checks a + b ≡ result
	FieldOperationAdd FieldOperation = iota
	// FieldOperationMul checks a · b ≡ result
	FieldOperationMul
)

// String returns the operation name
func (op FieldOperation) String() string {
	switch op {
	case FieldOperationAdd:
		return "add"
	case FieldOperationMul:
		return "mul"
	default:
		return fmt.Sprintf("FieldOperation(%d)", uint8(op))
	}
}

// FieldOpCols proves result = a op b mod p through the limb identity
//
//	a(x) op b(x) - result(x) - carry(x)·p(x) = (x - 256)·witness(x)
//
// where witness limbs are stored offset and split into low and high bytes.
type FieldOpCols struct {
	Result      [U32NumLimbs]field.Element
	Carry       [U32NumCarryLimbs]field.Element
	WitnessLow  [U32NumWitnessLimbs]field.Element
	WitnessHigh [U32NumWitnessLimbs]field.Element
}

// NumFieldOpCols is the column count of FieldOpCols
const NumFieldOpCols = U32NumLimbs + U32NumCarryLimbs + 2*U32NumWitnessLimbs

func convolve(a, b []int64) []int64 {
	out := make([]int64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func toInt64(b []byte) []int64 {
	out := make([]int64, len(b))
	for i, v := range b {
		out[i] = int64(v)
	}
	return out
}

// PopulateWithModulus computes a op b mod modulus, fills the columns and
// requests byte range checks for every limb. The modulus must be non-zero.
func (cols *FieldOpCols) PopulateWithModulus(
	record events.ByteRecord,
	shard uint32,
	a, b, modulus *uint256.Int,
	op FieldOperation,
) *uint256.Int {
	if modulus.IsZero() {
		panic("operations: field operation with zero modulus")
	}

	full := new(uint256.Int)
	switch op {
	case FieldOperationAdd:
		full.Add(a, b)
	case FieldOperationMul:
		full.Mul(a, b)
	default:
		panic(fmt.Sprintf("operations: unsupported %s", op))
	}
	result := new(uint256.Int).Mod(full, modulus)
	carry := new(uint256.Int).Div(full, modulus)

	p := U32Field
	aBytes := core.Uint256ToBytesLE(a, p.NumLimbs)
	bBytes := core.Uint256ToBytesLE(b, p.NumLimbs)
	resultBytes := core.Uint256ToBytesLE(result, p.NumLimbs)
	carryBytes := core.Uint256ToBytesLE(carry, p.NumCarryLimbs)
	modulusBytes := core.Uint256ToBytesLE(modulus, p.NumLimbs+1)

	var lhs []int64
	if op == FieldOperationMul {
		lhs = convolve(toInt64(aBytes), toInt64(bBytes))
	} else {
		lhs = make([]int64, p.NumLimbs)
		for i := range lhs {
			lhs[i] = int64(aBytes[i]) + int64(bBytes[i])
		}
	}
	carryTimesModulus := convolve(toInt64(carryBytes), toInt64(modulusBytes))

	vanishing := make([]int64, len(carryTimesModulus))
	for i := range vanishing {
		if i < len(lhs) {
			vanishing[i] += lhs[i]
		}
		if i < len(resultBytes) {
			vanishing[i] -= int64(resultBytes[i])
		}
		vanishing[i] -= carryTimesModulus[i]
	}

	// divide by (x - 256): w[k-1] = v[k] + 256·w[k]
	n := len(vanishing)
	witness := make([]int64, n-1)
	witness[n-2] = vanishing[n-1]
	for k := n - 2; k >= 1; k-- {
		witness[k-1] = vanishing[k] + 256*witness[k]
	}
	if vanishing[0]+256*witness[0] != 0 {
		panic("operations: vanishing polynomial has no root at 256")
	}

	offset := int64(p.WitnessOffset)
	for i, w := range witness {
		shifted := w + offset
		if shifted < 0 || shifted >= 1<<16 {
			panic(fmt.Sprintf("operations: witness limb %d out of range: %d", i, w))
		}
		cols.WitnessLow[i] = field.New(uint64(shifted & 0xFF))
		cols.WitnessHigh[i] = field.New(uint64(shifted >> 8))
	}
	for i := range cols.Result {
		cols.Result[i] = field.New(uint64(resultBytes[i]))
	}
	for i := range cols.Carry {
		cols.Carry[i] = field.New(uint64(carryBytes[i]))
	}

	events.AddU8RangeChecks(record, shard, resultBytes)
	events.AddU8RangeChecks(record, shard, carryBytes)
	low, high := cols.witnessBytes()
	events.AddU8RangeChecks(record, shard, low)
	events.AddU8RangeChecks(record, shard, high)

	return result
}

// Populate uses the default modulus of U32Field
func (cols *FieldOpCols) Populate(record events.ByteRecord, shard uint32, a, b *uint256.Int, op FieldOperation) *uint256.Int {
	return cols.PopulateWithModulus(record, shard, a, b, U32Field.Modulus(), op)
}

func (cols *FieldOpCols) witnessBytes() ([]byte, []byte) {
	low := make([]byte, len(cols.WitnessLow))
	high := make([]byte, len(cols.WitnessHigh))
	for i := range low {
		low[i] = byte(cols.WitnessLow[i].Value())
		high[i] = byte(cols.WitnessHigh[i].Value())
	}
	return low, high
}

// EvalWithModulus asserts the limb identity for a op b against pModulus on
// real rows and sends the byte range checks of every limb.
func (cols FieldOpCols) EvalWithModulus(
	builder air.AirBuilder,
	a, b []field.Element,
	pModulus *core.Polynomial,
	op FieldOperation,
	isReal field.Element,
) {
	pA := core.NewPolynomial(a)
	pB := core.NewPolynomial(b)

	var pOp *core.Polynomial
	switch op {
	case FieldOperationAdd:
		pOp = pA.Add(pB)
	case FieldOperationMul:
		pOp = pA.Mul(pB)
	default:
		panic(fmt.Sprintf("operations: unsupported %s", op))
	}

	pResult := core.NewPolynomial(cols.Result[:])
	pCarry := core.NewPolynomial(cols.Carry[:])
	pVanishing := pOp.Sub(pResult).Sub(pCarry.Mul(pModulus))

	pWitness := core.NewPolynomial(cols.WitnessLow[:]).
		Add(core.NewPolynomial(cols.WitnessHigh[:]).MulScalar(field.New(256))).
		AddScalar(core.FromInt64(-int64(U32Field.WitnessOffset)))
	root := core.NewPolynomial([]field.Element{core.FromInt64(-256), field.One})
	identity := pVanishing.Sub(root.Mul(pWitness))

	gated := builder.When(isReal).Named("field_op_" + op.String())
	for i := 0; i < identity.Len(); i++ {
		gated.AssertZero(identity.Coefficient(i))
	}

	SendU8RangeChecks(builder, cols.Result[:], isReal)
	SendU8RangeChecks(builder, cols.Carry[:], isReal)
	SendU8RangeChecks(builder, cols.WitnessLow[:], isReal)
	SendU8RangeChecks(builder, cols.WitnessHigh[:], isReal)
}
