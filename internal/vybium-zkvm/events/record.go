package events

import (
	"sort"
)

// Shape fixes the log2 height of chip traces, forcing inclusion of every chip
// it names. It is supplied by an external shape policy.
type Shape struct {
	Log2Rows map[string]int
}

// Included reports whether the shape names the chip
func (s *Shape) Included(chip string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Log2Rows[chip]
	return ok
}

// Log2Height returns the fixed log2 height of a chip, if any
func (s *Shape) Log2Height(chip string) (int, bool) {
	if s == nil {
		return 0, false
	}
	h, ok := s.Log2Rows[chip]
	return h, ok
}

// ExecutionRecord stores everything emitted while executing one shard.
// It is append-only and has a single writer.
type ExecutionRecord struct {
	// Shard is the shard index of the record
	Shard uint32

	// Shape is the optional fixed shape for trace generation
	Shape *Shape

	precompileEvents map[SyscallCode][]PrecompileEntry
	syscallEvents    []SyscallEvent
	byteLookups      map[ByteLookupEvent]uint64
}

// NewExecutionRecord creates an empty record for a shard
func NewExecutionRecord(shard uint32) *ExecutionRecord {
	return &ExecutionRecord{
		Shard:            shard,
		precompileEvents: make(map[SyscallCode][]PrecompileEntry),
		syscallEvents:    make([]SyscallEvent, 0),
		byteLookups:      make(map[ByteLookupEvent]uint64),
	}
}

// AddPrecompileEvent stores a precompile event together with its dispatch record
func (r *ExecutionRecord) AddPrecompileEvent(code SyscallCode, syscall SyscallEvent, event PrecompileEvent) {
	r.precompileEvents[code] = append(r.precompileEvents[code], PrecompileEntry{Syscall: syscall, Event: event})
}

// PrecompileEvents returns the events stored for a syscall, in insertion order
func (r *ExecutionRecord) PrecompileEvents(code SyscallCode) []PrecompileEntry {
	return r.precompileEvents[code]
}

// AddSyscallEvent records a dispatch bus entry
func (r *ExecutionRecord) AddSyscallEvent(e SyscallEvent) {
	r.syscallEvents = append(r.syscallEvents, e)
}

// SyscallEvents returns the dispatch bus entries in insertion order
func (r *ExecutionRecord) SyscallEvents() []SyscallEvent {
	return r.syscallEvents
}

// AddByteLookupEvent implements ByteRecord
func (r *ExecutionRecord) AddByteLookupEvent(e ByteLookupEvent) {
	r.byteLookups[e]++
}

// AddByteLookupEvents merges a batch of byte lookups
func (r *ExecutionRecord) AddByteLookupEvents(events []ByteLookupEvent) {
	for _, e := range events {
		r.byteLookups[e]++
	}
}

// ByteLookups returns the byte lookup multiset
func (r *ExecutionRecord) ByteLookups() map[ByteLookupEvent]uint64 {
	return r.byteLookups
}

// SortedByteLookups returns the distinct byte lookups in a stable order
func (r *ExecutionRecord) SortedByteLookups() []ByteLookupEvent {
	out := make([]ByteLookupEvent, 0, len(r.byteLookups))
	for e := range r.byteLookups {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Shard != b.Shard {
			return a.Shard < b.Shard
		}
		if a.Opcode != b.Opcode {
			return a.Opcode < b.Opcode
		}
		if a.A != b.A {
			return a.A < b.A
		}
		if a.B != b.B {
			return a.B < b.B
		}
		return a.C < b.C
	})
	return out
}

// Append moves the contents of other into r. Events are concatenated and
// byte lookup multiplicities are added.
func (r *ExecutionRecord) Append(other *ExecutionRecord) {
	for code, entries := range other.precompileEvents {
		r.precompileEvents[code] = append(r.precompileEvents[code], entries...)
	}
	r.syscallEvents = append(r.syscallEvents, other.syscallEvents...)
	for e, m := range other.byteLookups {
		r.byteLookups[e] += m
	}

	other.precompileEvents = make(map[SyscallCode][]PrecompileEntry)
	other.syscallEvents = other.syscallEvents[:0]
	other.byteLookups = make(map[ByteLookupEvent]uint64)
}

// Stats returns event counts keyed by a short name
func (r *ExecutionRecord) Stats() map[string]int {
	stats := map[string]int{
		"syscall_events":      len(r.syscallEvents),
		"byte_lookups":        0,
		"byte_lookups_unique": len(r.byteLookups),
	}
	for _, m := range r.byteLookups {
		stats["byte_lookups"] += int(m)
	}
	for code, entries := range r.precompileEvents {
		stats[code.String()+"_events"] = len(entries)
	}
	return stats
}
