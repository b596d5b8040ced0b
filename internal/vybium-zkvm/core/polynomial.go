package core

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Polynomial is a dense coefficient vector over the base field, lowest degree first.
//
// Limb identities compare polynomials coefficient by coefficient, so unlike a
// general purpose polynomial type leading zeros are kept: the shape of an identity
// must not depend on the values being checked.
type Polynomial struct {
	coefficients []field.Element
}

// NewPolynomial copies the given coefficients
func NewPolynomial(coefficients []field.Element) *Polynomial {
	c := make([]field.Element, len(coefficients))
	copy(c, coefficients)
	return &Polynomial{coefficients: c}
}

// Coefficients returns a copy of the coefficient vector
func (p *Polynomial) Coefficients() []field.Element {
	c := make([]field.Element, len(p.coefficients))
	copy(c, p.coefficients)
	return c
}

// Len returns the number of coefficients
func (p *Polynomial) Len() int {
	return len(p.coefficients)
}

// Coefficient returns the coefficient of x^i, zero beyond the vector
func (p *Polynomial) Coefficient(i int) field.Element {
	if i < 0 || i >= len(p.coefficients) {
		return field.Zero
	}
	return p.coefficients[i]
}

// Add returns p + q
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	n := max(len(p.coefficients), len(q.coefficients))
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coefficient(i).Add(q.Coefficient(i))
	}
	return &Polynomial{coefficients: out}
}

// Sub returns p - q
func (p *Polynomial) Sub(q *Polynomial) *Polynomial {
	n := max(len(p.coefficients), len(q.coefficients))
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coefficient(i).Sub(q.Coefficient(i))
	}
	return &Polynomial{coefficients: out}
}

// Mul returns the product p * q
func (p *Polynomial) Mul(q *Polynomial) *Polynomial {
	if len(p.coefficients) == 0 || len(q.coefficients) == 0 {
		return &Polynomial{}
	}
	out := make([]field.Element, len(p.coefficients)+len(q.coefficients)-1)
	for i := range out {
		out[i] = field.Zero
	}
	for i, a := range p.coefficients {
		for j, b := range q.coefficients {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return &Polynomial{coefficients: out}
}

// MulScalar multiplies every coefficient by s
func (p *Polynomial) MulScalar(s field.Element) *Polynomial {
	out := make([]field.Element, len(p.coefficients))
	for i, c := range p.coefficients {
		out[i] = c.Mul(s)
	}
	return &Polynomial{coefficients: out}
}

// AddScalar adds s to every coefficient
func (p *Polynomial) AddScalar(s field.Element) *Polynomial {
	out := make([]field.Element, len(p.coefficients))
	for i, c := range p.coefficients {
		out[i] = c.Add(s)
	}
	return &Polynomial{coefficients: out}
}

// Eval evaluates the polynomial at x with Horner's rule
func (p *Polynomial) Eval(x field.Element) field.Element {
	acc := field.Zero
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coefficients[i])
	}
	return acc
}
