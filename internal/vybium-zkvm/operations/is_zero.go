package operations

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
)

// IsZeroOperation proves whether a field value is zero
type IsZeroOperation struct {
	// Inverse is the inverse of the input when it is non-zero
	Inverse field.Element
	// Result is 1 if the input is zero and 0 otherwise
	Result field.Element
}

// NumIsZeroCols is the column count of IsZeroOperation
const NumIsZeroCols = 2

// Populate fills the columns for a and returns 1 if a is zero
func (op *IsZeroOperation) Populate(a field.Element) uint32 {
	if a.IsZero() {
		op.Inverse = field.Zero
		op.Result = field.One
		return 1
	}
	op.Inverse = a.Inverse()
	op.Result = field.Zero
	return 0
}

// Eval asserts a·inv = 1 - result, a·result = 0 and result ∈ {0,1} on real rows
func (op IsZeroOperation) Eval(builder air.AirBuilder, a field.Element, isReal field.Element) {
	b := builder.When(isReal).Named("is_zero")
	b.AssertEq(a.Mul(op.Inverse), field.One.Sub(op.Result))
	b.AssertZero(a.Mul(op.Result))
	b.AssertBool(op.Result)
}
