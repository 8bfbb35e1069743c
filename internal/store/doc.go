// Package store provides SQLite-backed durable storage for one record/replay
// session: the event log of recorded non-deterministic inputs and the
// snapshot payloads taken at configured intervals.
//
// The store is this repository's implementation of the host stream
// callbacks (session.StreamFunctions); payloads are opaque bytes whose
// layout belongs to the snapshot serializer, not to this core.
//
// Invariants:
//   - The event log is append-only; seq is a monotonic logical position,
//     never a timestamp.
//   - All reads ORDER BY seq/generation so replay sees one deterministic
//     order.
//   - Snapshot history is bounded: pruning keeps the newest N generations
//     per the session's configured history length, enabling reverse
//     time-travel without unbounded storage.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
