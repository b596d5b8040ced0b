package core

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func TestWordsBytesRoundTrip(t *testing.T) {
	words := []uint32{0x04030201, 0xFFFFFFFF, 0}
	b := WordsToBytesLE(words)
	assert.Equal(t, []byte{1, 2, 3, 4, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}, b)

	back, err := BytesToWordsLE(b)
	require.NoError(t, err)
	assert.Equal(t, words, back)

	_, err = BytesToWordsLE([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestUint256LittleEndian(t *testing.T) {
	tests := []struct {
		name  string
		words []uint32
		want  uint64
	}{
		{"zero", []uint32{0}, 0},
		{"one", []uint32{1}, 1},
		{"max word", []uint32{0xFFFFFFFF}, 0xFFFFFFFF},
		{"two words", []uint32{0x00000001, 0x00000002}, 0x0000000200000001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := Uint256FromWordsLE(tt.words)
			assert.Equal(t, tt.want, x.Uint64())
			assert.Equal(t, tt.words, Uint256ToWordsLE(x, len(tt.words)))
		})
	}
}

func TestUint256ToBytesLEPadsAndTruncates(t *testing.T) {
	x := uint256.NewInt(0x0102)
	assert.Equal(t, []byte{0x02, 0x01, 0, 0, 0}, Uint256ToBytesLE(x, 5))

	big := uint256.NewInt(0x1_0000_0001)
	assert.Equal(t, []byte{1, 0, 0, 0}, Uint256ToBytesLE(big, 4))
}

func TestFromInt64(t *testing.T) {
	minusOne := FromInt64(-1)
	assert.True(t, minusOne.Add(field.One).IsZero())
	assert.True(t, FromInt64(7).Equal(field.New(7)))
}

func TestPolynomialArithmetic(t *testing.T) {
	// (1 + 2x) * (3 + x) = 3 + 7x + 2x^2
	p := polyFromUint64([]uint64{1, 2})
	q := polyFromUint64([]uint64{3, 1})
	prod := p.Mul(q)
	require.Equal(t, 3, prod.Len())
	assert.True(t, prod.Coefficient(0).Equal(field.New(3)))
	assert.True(t, prod.Coefficient(1).Equal(field.New(7)))
	assert.True(t, prod.Coefficient(2).Equal(field.New(2)))

	// evaluation at 256 recovers the integer encoded by byte limbs
	limbs := polyFromUint64([]uint64{0x01, 0x02, 0x03, 0x04})
	assert.Equal(t, uint64(0x04030201), limbs.Eval(field.New(256)).Value())

	diff := prod.Sub(prod)
	for _, c := range diff.Coefficients() {
		assert.True(t, c.IsZero())
	}
	assert.True(t, p.Add(q).Coefficient(1).Equal(field.New(3)))
	assert.True(t, p.MulScalar(field.New(2)).Coefficient(1).Equal(field.New(4)))
}

func TestEffectiveModulus(t *testing.T) {
	assert.Equal(t, uint64(1)<<32, EffectiveModulus(uint256.NewInt(0)).Uint64())
	assert.Equal(t, uint64(5), EffectiveModulus(uint256.NewInt(5)).Uint64())
	assert.Equal(t, WordModulus(), Uint256FromBytesLE(WordModulusBytes))
}

func TestSquareMod(t *testing.T) {
	tests := []struct {
		x, m, want uint64
	}{
		{3, 5, 4},
		{0xFFFFFFFF, 0, 1},
		{1, 0, 1},
		{0, 7, 0},
		{0xFFFFFFFF, 0xFFFFFFFF, 0},
		{0x10000, 0, 0},
	}
	for _, tt := range tests {
		got := SquareMod(uint256.NewInt(tt.x), uint256.NewInt(tt.m))
		assert.Equal(t, tt.want, got.Uint64(), "%d^2 mod %d", tt.x, tt.m)
	}
}

func TestByteSumFits(t *testing.T) {
	assert.True(t, ByteSumFits(WordSize))
	assert.True(t, ByteSumFits(0))
	assert.False(t, ByteSumFits(-1))
	assert.False(t, ByteSumFits(int((field.P-1)/255)+1))
}

func polyFromUint64(coefficients []uint64) *Polynomial {
	c := make([]field.Element, len(coefficients))
	for i, v := range coefficients {
		c[i] = field.New(v)
	}
	return NewPolynomial(c)
}
