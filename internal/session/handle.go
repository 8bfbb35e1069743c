package session

import (
	"sync"

	"github.com/google/uuid"
)

// HandleGenerator generates host-visible external handles for registered
// contexts. Implemented by UUIDv7Generator (production) and FixedGenerator
// (tests).
type HandleGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 external handles.
//
// UUIDv7 embeds a timestamp in the most significant bits, so handles sort by
// creation time, which keeps session diagnostics readable.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined handles for testing.
// Determinism lets tests compare handles against golden expectations.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu      sync.Mutex
	handles []string
	idx     int
}

// NewFixedGenerator creates a generator that returns handles in order.
// Generate panics once all handles are consumed; exhausting the fixture is
// a test bug, not a runtime condition.
func NewFixedGenerator(handles ...string) *FixedGenerator {
	return &FixedGenerator{handles: handles}
}

// Generate returns the next predetermined handle.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.handles) {
		panic("session: FixedGenerator exhausted")
	}
	h := g.handles[g.idx]
	g.idx++
	return h
}
