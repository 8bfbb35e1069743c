package session

import (
	"context"
	"fmt"
	"time"

	"github.com/prince156/ChakraCore/internal/heap"
)

// Config is the host-supplied session configuration, fixed at session start.
type Config struct {
	// URI identifies the storage location for the event log and snapshots.
	URI string

	// SnapInterval is the number of log events between automatic snapshots.
	SnapInterval uint32

	// SnapHistoryLength is how many past snapshots are retained for
	// reverse time-travel.
	SnapHistoryLength uint32
}

// Validate checks the configuration at session start. A malformed
// configuration is not recoverable mid-session.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("session config: storage URI is required")
	}
	if c.SnapInterval == 0 {
		return fmt.Errorf("session config: snapshot interval must be >= 1")
	}
	if c.SnapHistoryLength == 0 {
		return fmt.Errorf("session config: snapshot history length must be >= 1")
	}
	return nil
}

// LogEvent is one recorded non-deterministic input in the event log.
// The payload is opaque to this core.
type LogEvent struct {
	Seq     int64
	Kind    string
	Payload []byte
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	Generation int64
	LogSeq     int64
	Size       int64
	CreatedAt  time.Time
}

// StreamFunctions is the host-provided storage interface for the event log
// and snapshots. The core treats all payloads as opaque bytes; layout is the
// snapshot serializer's business.
type StreamFunctions interface {
	// AppendLogEvent appends one event and returns its assigned sequence.
	AppendLogEvent(ctx context.Context, kind string, payload []byte) (int64, error)

	// ReadLogEvents returns events with Seq >= fromSeq in sequence order.
	ReadLogEvents(ctx context.Context, fromSeq int64) ([]LogEvent, error)

	// WriteSnapshot stores a snapshot payload for a generation, recording
	// the log sequence it was taken at.
	WriteSnapshot(ctx context.Context, generation, logSeq int64, payload []byte) error

	// ReadSnapshot returns the payload for a generation.
	ReadSnapshot(ctx context.Context, generation int64) ([]byte, error)

	// ListSnapshots returns stored snapshots in generation order.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)

	// PruneSnapshots deletes the oldest snapshots until at most keep
	// remain, returning how many were deleted.
	PruneSnapshots(ctx context.Context, keep int) (int, error)
}

// Host bundles the callbacks the embedding host supplies at session start.
type Host struct {
	// Streams performs log and snapshot I/O against the configured URI.
	Streams StreamFunctions

	// CreateExternalObject constructs a host object during replay when the
	// log says the host created one during recording. May be nil for
	// record-only sessions.
	CreateExternalObject func() (heap.Object, error)
}

// ContextCallbacks are per-context host notifications.
type ContextCallbacks struct {
	// OnTopLevelUnit is invoked after a top-level unit is registered with
	// the context. May be nil.
	OnTopLevelUnit func(body heap.FunctionBody, kind UnitKind)
}

// ContextConfig carries per-context registration parameters.
type ContextConfig struct {
	// ExternalHandle is the host-visible handle bound to the context.
	// Generated by the session's HandleGenerator when empty.
	ExternalHandle string

	Callbacks ContextCallbacks

	// NoNative disables native codegen for the context; recorded so replay
	// can recreate the context with matching execution characteristics.
	NoNative bool

	// DebugMode marks the context as created under a debugger.
	DebugMode bool
}
