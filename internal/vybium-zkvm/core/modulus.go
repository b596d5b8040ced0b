package core

import (
	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// WordModulusBytes is 2^32 as little-endian bytes. A stored modulus of zero
// stands for this value because a word cannot represent it.
var WordModulusBytes = []byte{0, 0, 0, 0, 1}

// WordModulus returns 2^32
func WordModulus() *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), 32)
}

// EffectiveModulus maps the zero sentinel to 2^32 and returns any other modulus unchanged
func EffectiveModulus(modulus *uint256.Int) *uint256.Int {
	if modulus.IsZero() {
		return WordModulus()
	}
	return modulus.Clone()
}

// SquareMod returns x*x mod the effective modulus
func SquareMod(x, modulus *uint256.Int) *uint256.Int {
	m := EffectiveModulus(modulus)
	sq := new(uint256.Int).Mul(x, x)
	return sq.Mod(sq, m)
}

// ByteSumFits reports whether the sum of n bytes stays below the field
// characteristic, so that a zero sum implies every byte is zero
func ByteSumFits(n int) bool {
	return n >= 0 && uint64(n) <= (field.P-1)/255
}
