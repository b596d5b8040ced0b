// Package core holds the word, byte and limb encodings shared by the executor,
// the trace builder and the constraint evaluator.
package core

import (
	"fmt"

	"github.com/holiman/uint256"
)

// WordSize is the number of bytes in a memory word
const WordSize = 4

// MaxClkDiff bounds the gap between two accesses to one word. The gap minus
// one is stored in a 16-bit and an 8-bit limb.
const MaxClkDiff = 1 << 24

// WordsToBytesLE flattens little-endian words into their little-endian bytes
func WordsToBytesLE(words []uint32) []byte {
	out := make([]byte, len(words)*WordSize)
	for i, w := range words {
		out[i*WordSize] = byte(w)
		out[i*WordSize+1] = byte(w >> 8)
		out[i*WordSize+2] = byte(w >> 16)
		out[i*WordSize+3] = byte(w >> 24)
	}
	return out
}

// BytesToWordsLE packs little-endian bytes into words.
// The byte length must be a multiple of the word size.
func BytesToWordsLE(b []byte) ([]uint32, error) {
	if len(b)%WordSize != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of %d", len(b), WordSize)
	}
	words := make([]uint32, len(b)/WordSize)
	for i := range words {
		words[i] = uint32(b[i*WordSize]) |
			uint32(b[i*WordSize+1])<<8 |
			uint32(b[i*WordSize+2])<<16 |
			uint32(b[i*WordSize+3])<<24
	}
	return words, nil
}

// WordBytes returns the four little-endian bytes of a word
func WordBytes(w uint32) [WordSize]byte {
	return [WordSize]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
}

// Uint256FromBytesLE decodes up to 32 little-endian bytes
func Uint256FromBytesLE(b []byte) *uint256.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(uint256.Int).SetBytes(be)
}

// Uint256FromWordsLE decodes a little-endian word sequence
func Uint256FromWordsLE(words []uint32) *uint256.Int {
	return Uint256FromBytesLE(WordsToBytesLE(words))
}

// Uint256ToBytesLE encodes x into exactly n little-endian bytes.
// Shorter encodings are zero padded; bytes above n are dropped.
func Uint256ToBytesLE(x *uint256.Int, n int) []byte {
	be := x.Bytes32()
	out := make([]byte, n)
	for i := 0; i < n && i < len(be); i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// Uint256ToWordsLE encodes x into exactly n little-endian words
func Uint256ToWordsLE(x *uint256.Int, n int) []uint32 {
	words, _ := BytesToWordsLE(Uint256ToBytesLE(x, n*WordSize))
	return words
}
