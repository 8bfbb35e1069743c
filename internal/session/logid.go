package session

import "sync/atomic"

// LogID is a durable cross-run object identifier. It is assigned once per
// first-observed object, is unique within a session, survives collector
// moves, and is never reused while the session lives. The zero value is
// reserved and never allocated.
type LogID uint64

// LogIDAllocator hands out monotonically increasing log ids for the life of
// a session.
//
// Thread-safety: the allocator uses atomic operations, so ids may be drawn
// from host callback paths as well as the script thread. Monotonicity
// guarantees:
//   - Deterministic ordering (no wall-clock involvement)
//   - Replay assigns the same ids in the same order
//   - A destroyed context's ids stay retired forever
type LogIDAllocator struct {
	last atomic.Uint64
}

// NewLogIDAllocator creates an allocator whose first Next() returns 1.
func NewLogIDAllocator() *LogIDAllocator {
	return &LogIDAllocator{}
}

// NewLogIDAllocatorAt creates an allocator resuming after last.
// Used when restoring a snapshot to continue the recorded id sequence.
func NewLogIDAllocatorAt(last LogID) *LogIDAllocator {
	a := &LogIDAllocator{}
	a.last.Store(uint64(last))
	return a
}

// Next returns the next log id and advances the allocator.
// Calls are linearizable - each call returns a unique, increasing id.
func (a *LogIDAllocator) Next() LogID {
	return LogID(a.last.Add(1))
}

// Current returns the most recently allocated id without advancing.
// Useful for checkpointing the id sequence into a snapshot.
func (a *LogIDAllocator) Current() LogID {
	return LogID(a.last.Load())
}
