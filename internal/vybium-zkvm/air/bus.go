package air

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// ErrBusImbalance is returned when sends and receives on a bus do not cancel
var ErrBusImbalance = errors.New("air: bus is not balanced")

// Bus balances interactions with a log-derivative argument:
// Σ ±m / (β - fingerprint(values)) must vanish per bus.
type Bus struct {
	alpha field.Element
	beta  field.Element
}

// NewBus creates a bus with the compression and shift challenges
func NewBus(alpha, beta field.Element) *Bus {
	return &Bus{alpha: alpha, beta: beta}
}

// Fingerprint compresses a message into one element: kind + Σ αⁱ⁺¹·vᵢ
func (b *Bus) Fingerprint(kind InteractionKind, values []field.Element) field.Element {
	acc := field.New(uint64(kind))
	power := b.alpha
	for _, v := range values {
		acc = acc.Add(power.Mul(v))
		power = power.Mul(b.alpha)
	}
	return acc
}

// Term returns the signed log-derivative contribution of one interaction
func (b *Bus) Term(in Interaction) (field.Element, error) {
	denominator := b.beta.Sub(b.Fingerprint(in.Kind, in.Values))
	if denominator.IsZero() {
		return field.Zero, fmt.Errorf("air: %s message collides with the challenge", in.Kind)
	}
	term := in.Multiplicity.Mul(denominator.Inverse())
	if !in.IsSend {
		term = term.Neg()
	}
	return term, nil
}

// Accumulate sums the contributions of interactions per bus
func (b *Bus) Accumulate(acc map[InteractionKind]field.Element, interactions []Interaction) error {
	for _, in := range interactions {
		if in.Multiplicity.IsZero() {
			continue
		}
		term, err := b.Term(in)
		if err != nil {
			return err
		}
		cur, ok := acc[in.Kind]
		if !ok {
			cur = field.Zero
		}
		acc[in.Kind] = cur.Add(term)
	}
	return nil
}

// CheckBalanced verifies that every accumulated bus sums to zero
func CheckBalanced(acc map[InteractionKind]field.Element) error {
	kinds := make([]InteractionKind, 0, len(acc))
	for k := range acc {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var unbalanced []string
	for _, k := range kinds {
		if !acc[k].IsZero() {
			unbalanced = append(unbalanced, k.String())
		}
	}
	if len(unbalanced) > 0 {
		return fmt.Errorf("%w: %v", ErrBusImbalance, unbalanced)
	}
	return nil
}
