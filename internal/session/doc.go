// Package session implements the thread-wide bookkeeping for one time-travel
// record/replay session: the set of live execution contexts, the pinned root
// sets with their durable log ids, the dead-context singleton records, and
// the per-context top-level source and pending-async-mutation tracking.
//
// One Session object is created per recording or replaying runtime and is
// passed explicitly to everything that needs it; there is no package-level
// state. Apart from log-id allocation, all mutation happens on the single
// script execution thread, so the session performs no internal locking.
package session
