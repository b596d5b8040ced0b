// Package operations holds reusable column groups together with the code that
// fills them from native values and the constraints that check them.
package operations

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
)

// Word is a 32-bit value stored as four little-endian byte columns
type Word [core.WordSize]field.Element

// WordFromUint32 splits v into byte columns
func WordFromUint32(v uint32) Word {
	var w Word
	b := core.WordBytes(v)
	for i := range w {
		w[i] = field.New(uint64(b[i]))
	}
	return w
}

// Slice returns the byte columns as a slice
func (w Word) Slice() []field.Element {
	out := make([]field.Element, len(w))
	copy(out, w[:])
	return out
}

func byteOpcode(op events.ByteOpcode) field.Element {
	return field.New(uint64(op))
}

// SendU8RangeChecks sends byte range checks for values in pairs, mirroring
// events.AddU8RangeChecks.
func SendU8RangeChecks(b air.AirBuilder, values []field.Element, multiplicity field.Element) {
	for i := 0; i < len(values); i += 2 {
		second := field.Zero
		if i+1 < len(values) {
			second = values[i+1]
		}
		b.SendByte(byteOpcode(events.ByteU8Range), field.Zero, values[i], second, multiplicity)
	}
}
