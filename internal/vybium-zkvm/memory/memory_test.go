package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRecords(t *testing.T) {
	m := New()
	require.NoError(t, m.Init(0x100, 7))

	read, err := m.Read(1, 10, 0x100)
	require.NoError(t, err)
	assert.Equal(t, MemoryReadRecord{Value: 7, Shard: 1, Timestamp: 10}, read)

	write, err := m.Write(1, 11, 0x100, 9)
	require.NoError(t, err)
	assert.Equal(t, MemoryWriteRecord{
		Value: 9, Shard: 1, Timestamp: 11,
		PrevValue: 7, PrevShard: 1, PrevTimestamp: 10,
	}, write)

	assert.Equal(t, MemoryRecord{Value: 7, Shard: 1, Timestamp: 10}, read.Current())
	assert.Equal(t, MemoryRecord{Value: 7, Shard: 1, Timestamp: 10}, write.Previous())

	v, err := m.Load(0x100)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), v)
}

func TestUnalignedAccess(t *testing.T) {
	m := New()
	_, err := m.Read(1, 1, 0x101)
	assert.ErrorIs(t, err, ErrUnalignedAddress)
	_, err = m.Peek(0x102, 1)
	assert.ErrorIs(t, err, ErrUnalignedAddress)
	assert.ErrorIs(t, m.Init(3, 0), ErrUnalignedAddress)
}

func TestSameTimestampCollisionRejected(t *testing.T) {
	m := New()
	_, err := m.Read(1, 20, 0x40)
	require.NoError(t, err)

	_, err = m.Write(1, 20, 0x40, 1)
	assert.ErrorIs(t, err, ErrTimestampOrder)

	_, err = m.Write(1, 21, 0x40, 1)
	assert.NoError(t, err)
}

func TestPeekCommitLease(t *testing.T) {
	m := New()
	require.NoError(t, m.Init(0x200, 3))

	lease, err := m.Peek(0x200, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, lease.Words())

	// the peek itself leaves no trace on the word
	assert.Equal(t, MemoryRecord{Value: 3}, m.entry(0x200))

	_, err = m.Peek(0x200, 1)
	assert.ErrorIs(t, err, ErrAddressLeased)
	_, err = m.Write(1, 5, 0x200, 1)
	assert.ErrorIs(t, err, ErrAddressLeased)

	// a recorded read of the leased word is still allowed
	_, err = m.Read(1, 5, 0x200)
	require.NoError(t, err)

	records, err := lease.Commit(1, 6, []uint32{4})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, MemoryWriteRecord{
		Value: 4, Shard: 1, Timestamp: 6,
		PrevValue: 3, PrevShard: 1, PrevTimestamp: 5,
	}, records[0])

	_, err = lease.Commit(1, 7, []uint32{5})
	assert.ErrorIs(t, err, ErrLeaseCommitted)

	again, err := m.Peek(0x200, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4}, again.Words())
	require.NoError(t, again.Release())
	assert.ErrorIs(t, again.Release(), ErrLeaseCommitted)
}

func TestLeaseCommitLengthMismatch(t *testing.T) {
	m := New()
	lease, err := m.Peek(0x10, 2)
	require.NoError(t, err)
	_, err = lease.Commit(1, 1, []uint32{1})
	assert.ErrorIs(t, err, ErrLeaseLength)
}

func TestFailedCommitWritesNothing(t *testing.T) {
	m := New()
	require.NoError(t, m.Init(0x300, 1))
	require.NoError(t, m.Init(0x304, 2))
	require.NoError(t, m.Init(0x308, 3))

	lease, err := m.Peek(0x300, 3)
	require.NoError(t, err)

	// the last word was read after the clock the commit claims
	_, err = m.Read(1, 10, 0x308)
	require.NoError(t, err)

	_, err = lease.Commit(1, 7, []uint32{7, 8, 9})
	require.ErrorIs(t, err, ErrTimestampOrder)
	assert.Equal(t, MemoryRecord{Value: 1}, m.entry(0x300))
	assert.Equal(t, MemoryRecord{Value: 2}, m.entry(0x304))
	assert.Equal(t, MemoryRecord{Value: 3, Shard: 1, Timestamp: 10}, m.entry(0x308))

	// the lease is still held
	_, err = m.Write(1, 11, 0x300, 5)
	assert.ErrorIs(t, err, ErrAddressLeased)

	records, err := lease.Commit(1, 11, []uint32{7, 8, 9})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint32(10), records[2].PrevTimestamp)
	assert.Equal(t, MemoryRecord{Value: 8, Shard: 1, Timestamp: 11}, m.entry(0x304))
}
