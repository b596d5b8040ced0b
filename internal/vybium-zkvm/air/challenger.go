package air

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// Challenger is a sha3 Fiat-Shamir transcript producing base field challenges
type Challenger struct {
	state      []byte
	transcript []string
}

// NewChallenger creates a transcript bound to a domain separator
func NewChallenger(domain string) *Challenger {
	c := &Challenger{state: []byte{0}}
	c.Observe([]byte(domain))
	return c
}

// Observe absorbs raw bytes
func (c *Challenger) Observe(data []byte) {
	c.transcript = append(c.transcript, "observe:"+hex.EncodeToString(data))
	h := sha3.Sum256(append(c.state, data...))
	c.state = h[:]
}

// ObserveElements absorbs field elements as little-endian u64s
func (c *Challenger) ObserveElements(elems ...field.Element) {
	buf := make([]byte, 8*len(elems))
	for i, e := range elems {
		binary.LittleEndian.PutUint64(buf[8*i:], e.Value())
	}
	c.Observe(buf)
}

// ObserveDigest absorbs a commitment
func (c *Challenger) ObserveDigest(d hash.Digest) {
	c.ObserveElements(d[:]...)
}

// Sample squeezes a challenge in [0, P)
func (c *Challenger) Sample() field.Element {
	v := binary.LittleEndian.Uint64(c.state[:8]) % field.P
	c.transcript = append(c.transcript, fmt.Sprintf("sample:%d", v))
	h := sha3.Sum256(c.state)
	c.state = h[:]
	return field.New(v)
}

// State returns a copy of the current state
func (c *Challenger) State() []byte {
	return append([]byte(nil), c.state...)
}

// String returns the transcript
func (c *Challenger) String() string {
	return strings.Join(c.transcript, " ")
}
