package core

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// FromUint32 lifts a word into the base field
func FromUint32(v uint32) field.Element {
	return field.New(uint64(v))
}

// FromInt64 lifts a signed integer, mapping negatives to p - |v|
func FromInt64(v int64) field.Element {
	if v >= 0 {
		return field.New(uint64(v))
	}
	return field.Zero.Sub(field.New(uint64(-v)))
}

// FromBool maps true to one and false to zero
func FromBool(b bool) field.Element {
	if b {
		return field.One
	}
	return field.Zero
}

// FromBytes lifts each byte into its own field element
func FromBytes(b []byte) []field.Element {
	out := make([]field.Element, len(b))
	for i, v := range b {
		out[i] = field.New(uint64(v))
	}
	return out
}

// Sum adds up a slice of field elements
func Sum(values []field.Element) field.Element {
	acc := field.Zero
	for _, v := range values {
		acc = acc.Add(v)
	}
	return acc
}
