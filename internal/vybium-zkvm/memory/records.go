// Package memory implements the word-addressed memory port used by precompiles.
//
// Every recorded access returns a record carrying the previous and the new
// (shard, timestamp) pair of the touched word. Those records feed the global
// memory consistency argument, which checks that each access happens strictly
// after the previous one on the same address.
package memory

// MemoryRecord is the state of a word after an access
type MemoryRecord struct {
	Value     uint32
	Shard     uint32
	Timestamp uint32
}

// MemoryReadRecord describes a read of a word
type MemoryReadRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// MemoryWriteRecord describes a write of a word
type MemoryWriteRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevValue     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// MemoryLocalEvent captures the first and last state of an address touched
// within one precompile invocation.
type MemoryLocalEvent struct {
	Addr             uint32
	InitialMemAccess MemoryRecord
	FinalMemAccess   MemoryRecord
}

// MemoryAccessRecord is implemented by read and write records so the trace
// builder can populate access columns from either.
type MemoryAccessRecord interface {
	Current() MemoryRecord
	Previous() MemoryRecord
}

// Current returns the state after the read
func (r MemoryReadRecord) Current() MemoryRecord {
	return MemoryRecord{Value: r.Value, Shard: r.Shard, Timestamp: r.Timestamp}
}

// Previous returns the state observed before the read
func (r MemoryReadRecord) Previous() MemoryRecord {
	return MemoryRecord{Value: r.Value, Shard: r.PrevShard, Timestamp: r.PrevTimestamp}
}

// Current returns the state after the write
func (r MemoryWriteRecord) Current() MemoryRecord {
	return MemoryRecord{Value: r.Value, Shard: r.Shard, Timestamp: r.Timestamp}
}

// Previous returns the state overwritten by the write
func (r MemoryWriteRecord) Previous() MemoryRecord {
	return MemoryRecord{Value: r.PrevValue, Shard: r.PrevShard, Timestamp: r.PrevTimestamp}
}
