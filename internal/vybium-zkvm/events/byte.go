package events

import "fmt"

// ByteOpcode selects the relation checked by the byte lookup table
type ByteOpcode uint8

const (
	// ByteU8Range checks that B and C are bytes
	ByteU8Range ByteOpcode = iota
	// ByteU16Range checks that A fits in 16 bits
	ByteU16Range
	// ByteLTU checks A == (B < C) for bytes B and C
	ByteLTU
)

// String returns the opcode name
func (op ByteOpcode) String() string {
	switch op {
	case ByteU8Range:
		return "U8Range"
	case ByteU16Range:
		return "U16Range"
	case ByteLTU:
		return "LTU"
	default:
		return fmt.Sprintf("ByteOpcode(%d)", uint8(op))
	}
}

// ByteLookupEvent is a request to the shared byte table
type ByteLookupEvent struct {
	Shard  uint32
	Opcode ByteOpcode
	A      uint32
	B      uint32
	C      uint32
}

// Valid evaluates the relation named by the opcode
func (e ByteLookupEvent) Valid() bool {
	switch e.Opcode {
	case ByteU8Range:
		return e.A == 0 && e.B <= 0xFF && e.C <= 0xFF
	case ByteU16Range:
		return e.A <= 0xFFFF && e.B == 0 && e.C == 0
	case ByteLTU:
		if e.B > 0xFF || e.C > 0xFF {
			return false
		}
		lt := uint32(0)
		if e.B < e.C {
			lt = 1
		}
		return e.A == lt
	default:
		return false
	}
}

// ByteRecord collects byte lookup requests
type ByteRecord interface {
	AddByteLookupEvent(e ByteLookupEvent)
}

// AddU8RangeCheck requests that a and b are bytes
func AddU8RangeCheck(r ByteRecord, shard uint32, a, b uint8) {
	r.AddByteLookupEvent(ByteLookupEvent{Shard: shard, Opcode: ByteU8Range, B: uint32(a), C: uint32(b)})
}

// AddU8RangeChecks requests byte range checks for every value, two per lookup
func AddU8RangeChecks(r ByteRecord, shard uint32, values []uint8) {
	for i := 0; i < len(values); i += 2 {
		b := uint8(0)
		if i+1 < len(values) {
			b = values[i+1]
		}
		AddU8RangeCheck(r, shard, values[i], b)
	}
}

// AddU16RangeCheck requests that a fits in 16 bits
func AddU16RangeCheck(r ByteRecord, shard uint32, a uint16) {
	r.AddByteLookupEvent(ByteLookupEvent{Shard: shard, Opcode: ByteU16Range, A: uint32(a)})
}

// ByteLookups is a plain slice collector used by per-chunk trace generation
type ByteLookups []ByteLookupEvent

// AddByteLookupEvent implements ByteRecord
func (b *ByteLookups) AddByteLookupEvent(e ByteLookupEvent) {
	*b = append(*b, e)
}

// discardBytes drops every request; dummy rows populate through it.
type discardBytes struct{}

func (discardBytes) AddByteLookupEvent(ByteLookupEvent) {}

// DiscardByteRecord returns a ByteRecord that ignores all requests
func DiscardByteRecord() ByteRecord {
	return discardBytes{}
}
