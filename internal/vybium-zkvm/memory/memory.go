package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrUnalignedAddress is returned for addresses that are not word aligned
	ErrUnalignedAddress = errors.New("memory: address is not word aligned")

	// ErrAddressLeased is returned when a peek overlaps a live lease
	ErrAddressLeased = errors.New("memory: address is leased by a pending peek")

	// ErrLeaseCommitted is returned when a lease is committed or released twice
	ErrLeaseCommitted = errors.New("memory: lease already committed")

	// ErrLeaseLength is returned when a commit does not match the leased range
	ErrLeaseLength = errors.New("memory: commit length does not match lease")

	// ErrTimestampOrder is returned when an access is not strictly after the
	// previous access to the same word
	ErrTimestampOrder = errors.New("memory: access is not after previous access")
)

// Memory is a sparse word-addressed memory. Unwritten words read as zero at
// shard 0, timestamp 0.
type Memory struct {
	words  map[uint32]MemoryRecord
	leases map[uint32]*Lease
}

// New creates an empty memory
func New() *Memory {
	return &Memory{
		words:  make(map[uint32]MemoryRecord),
		leases: make(map[uint32]*Lease),
	}
}

func checkAligned(addr uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("%w: 0x%08x", ErrUnalignedAddress, addr)
	}
	return nil
}

// Init seeds a word as part of the initial memory image
func (m *Memory) Init(addr, value uint32) error {
	if err := checkAligned(addr); err != nil {
		return err
	}
	m.words[addr] = MemoryRecord{Value: value}
	return nil
}

// Load returns the current value of a word without producing any record.
// It is meant for hosts inspecting memory between instructions.
func (m *Memory) Load(addr uint32) (uint32, error) {
	if err := checkAligned(addr); err != nil {
		return 0, err
	}
	return m.words[addr].Value, nil
}

func (m *Memory) entry(addr uint32) MemoryRecord {
	return m.words[addr]
}

func (m *Memory) advance(shard, clk, addr uint32) (MemoryRecord, error) {
	prev := m.words[addr]
	if shard < prev.Shard || (shard == prev.Shard && clk <= prev.Timestamp) {
		return prev, fmt.Errorf("%w: addr 0x%08x at (%d, %d), previous (%d, %d)",
			ErrTimestampOrder, addr, shard, clk, prev.Shard, prev.Timestamp)
	}
	return prev, nil
}

// Read performs a recorded read of one word
func (m *Memory) Read(shard, clk, addr uint32) (MemoryReadRecord, error) {
	if err := checkAligned(addr); err != nil {
		return MemoryReadRecord{}, err
	}
	prev, err := m.advance(shard, clk, addr)
	if err != nil {
		return MemoryReadRecord{}, err
	}
	m.words[addr] = MemoryRecord{Value: prev.Value, Shard: shard, Timestamp: clk}
	return MemoryReadRecord{
		Value:         prev.Value,
		Shard:         shard,
		Timestamp:     clk,
		PrevShard:     prev.Shard,
		PrevTimestamp: prev.Timestamp,
	}, nil
}

// Write performs a recorded write of one word
func (m *Memory) Write(shard, clk, addr, value uint32) (MemoryWriteRecord, error) {
	if err := checkAligned(addr); err != nil {
		return MemoryWriteRecord{}, err
	}
	if _, leased := m.leases[addr]; leased {
		return MemoryWriteRecord{}, fmt.Errorf("%w: 0x%08x", ErrAddressLeased, addr)
	}
	return m.write(shard, clk, addr, value)
}

func (m *Memory) write(shard, clk, addr, value uint32) (MemoryWriteRecord, error) {
	prev, err := m.advance(shard, clk, addr)
	if err != nil {
		return MemoryWriteRecord{}, err
	}
	m.words[addr] = MemoryRecord{Value: value, Shard: shard, Timestamp: clk}
	return MemoryWriteRecord{
		Value:         value,
		Shard:         shard,
		Timestamp:     clk,
		PrevValue:     prev.Value,
		PrevShard:     prev.Shard,
		PrevTimestamp: prev.Timestamp,
	}, nil
}

// Peek snapshots n consecutive words starting at addr without recording a read
// and leases the range until the returned lease is committed or released.
//
// While the lease is live no other peek or plain write may touch the range.
// Recorded reads remain allowed because they carry their own consistency record.
func (m *Memory) Peek(addr uint32, n int) (*Lease, error) {
	if err := checkAligned(addr); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("memory: peek of %d words", n)
	}
	for i := 0; i < n; i++ {
		a := addr + uint32(4*i)
		if _, leased := m.leases[a]; leased {
			return nil, fmt.Errorf("%w: 0x%08x", ErrAddressLeased, a)
		}
	}

	lease := &Lease{mem: m, addr: addr, words: make([]uint32, n)}
	for i := 0; i < n; i++ {
		a := addr + uint32(4*i)
		lease.words[i] = m.words[a].Value
		m.leases[a] = lease
	}
	return lease, nil
}

// Lease is the pending half of a peek-then-commit access
type Lease struct {
	mem   *Memory
	addr  uint32
	words []uint32
	done  bool
}

// Addr returns the first leased address
func (l *Lease) Addr() uint32 {
	return l.addr
}

// Words returns a copy of the peeked values
func (l *Lease) Words() []uint32 {
	out := make([]uint32, len(l.words))
	copy(out, l.words)
	return out
}

// Commit writes values over the leased range, producing one write record per
// word, and releases the lease.
//
// Every word is checked before any is written. A failed commit changes no word
// and leaves the lease live.
func (l *Lease) Commit(shard, clk uint32, values []uint32) ([]MemoryWriteRecord, error) {
	if l.done {
		return nil, ErrLeaseCommitted
	}
	if len(values) != len(l.words) {
		return nil, fmt.Errorf("%w: got %d words, leased %d", ErrLeaseLength, len(values), len(l.words))
	}

	for i := range values {
		if _, err := l.mem.advance(shard, clk, l.addr+uint32(4*i)); err != nil {
			return nil, err
		}
	}

	l.release()
	records := make([]MemoryWriteRecord, len(values))
	for i, v := range values {
		rec, err := l.mem.write(shard, clk, l.addr+uint32(4*i), v)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// Release abandons the lease without writing
func (l *Lease) Release() error {
	if l.done {
		return ErrLeaseCommitted
	}
	l.release()
	return nil
}

func (l *Lease) release() {
	l.done = true
	for i := range l.words {
		delete(l.mem.leases, l.addr+uint32(4*i))
	}
}
