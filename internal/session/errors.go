package session

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup miss that callers are expected to tolerate,
// e.g. resolving a log id that is not currently tracked during a partial
// snapshot restore. It is never a protocol violation.
var ErrNotFound = errors.New("not tracked")

// DesyncError reports a violated record/replay protocol invariant: the
// recorded log and the live state no longer agree. These are fatal for the
// session; recovery is not attempted.
//
// DesyncError includes structured fields so the diagnostic identifies which
// invariant failed and for which entity.
type DesyncError struct {
	// Code identifies the violated invariant.
	Code DesyncCode

	// Message is a human-readable description.
	Message string

	// ContextID identifies the affected context, when applicable.
	ContextID LogID

	// RootID identifies the affected root log id, when applicable.
	RootID LogID
}

// DesyncCode categorizes protocol desync errors.
type DesyncCode string

const (
	// CodeDuplicateContext indicates a context id was registered twice.
	CodeDuplicateContext DesyncCode = "DUPLICATE_CONTEXT"

	// CodeUnknownContext indicates an operation named a context the
	// session does not track.
	CodeUnknownContext DesyncCode = "UNKNOWN_CONTEXT"

	// CodeUnknownRoot indicates removal of a root id that was never added.
	CodeUnknownRoot DesyncCode = "UNKNOWN_ROOT"

	// CodeRootMismatch indicates a root id is bound to a different object
	// than the operation supplied.
	CodeRootMismatch DesyncCode = "ROOT_MISMATCH"

	// CodeEmptyAsyncQueue indicates a drain of the pending-async-mutation
	// queue when the log said an entry should be present.
	CodeEmptyAsyncQueue DesyncCode = "EMPTY_ASYNC_QUEUE"

	// CodeDuplicateUnit indicates a top-level unit was registered twice.
	CodeDuplicateUnit DesyncCode = "DUPLICATE_UNIT"
)

// Error implements the error interface.
func (e *DesyncError) Error() string {
	switch {
	case e.ContextID != 0:
		return fmt.Sprintf("%s: %s (context=%d)", e.Code, e.Message, e.ContextID)
	case e.RootID != 0:
		return fmt.Sprintf("%s: %s (root=%d)", e.Code, e.Message, e.RootID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsDesync returns true if the error is a protocol desync.
// Uses errors.As to handle wrapped errors.
func IsDesync(err error) bool {
	var de *DesyncError
	return errors.As(err, &de)
}

// CapacityError reports a violated session capacity or configuration bound,
// surfaced at session start or context creation. Not recoverable mid-session.
type CapacityError struct {
	What  string
	Limit int
	Got   int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %s (limit=%d, got=%d)", e.What, e.Limit, e.Got)
}

// IsCapacityError returns true if the error is a capacity/configuration
// error. Uses errors.As to handle wrapped errors.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
