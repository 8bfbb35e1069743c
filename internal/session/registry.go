package session

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/prince156/ChakraCore/internal/heap"
)

// MaxContextCount is the fixed upper bound on simultaneously tracked
// contexts. Exceeding it is a configuration error, not a recoverable
// condition.
const MaxContextCount = 32

// Mode distinguishes whether a session is producing a log or consuming one.
type Mode int

const (
	// ModeRecord captures non-deterministic inputs into the log.
	ModeRecord Mode = iota + 1
	// ModeReplay re-executes against a previously captured log.
	ModeReplay
)

// ScriptContext is the engine's execution context as this core sees it: an
// opaque comparable identity plus the externally assigned context id.
// Implementations are owned by the engine, not by the session.
type ScriptContext interface {
	ContextID() LogID
	GlobalObject() heap.Object
}

// DeadContextSnapshot records the log ids of the five singleton values of a
// context at the moment it was marked for destruction during replay. When
// replay later recreates an equivalent context, its fresh singletons are
// re-bound to these same ids, preserving identity continuity across the
// context's lifetime boundary.
type DeadContextSnapshot struct {
	GlobalID    LogID
	UndefinedID LogID
	NullID      LogID
	TrueID      LogID
	FalseID     LogID
}

// RootClass is the closed classification of a pinned root, computed once at
// registration time rather than re-derived from the object.
type RootClass int

const (
	// RootGeneral is an ordinary host-exposed object.
	RootGeneral RootClass = iota + 1
	// RootSpecial is one of the singleton kinds (global, undefined, null,
	// true, false) or an engine-designated always-special object; special
	// roots get identity re-binding handling during replay.
	RootSpecial
)

// rootEntry is one pinned root. Holding the object here is what pins it:
// the session's root maps are themselves registered with the collector as a
// root area, so membership keeps the object reachable for its tracked
// lifetime.
type rootEntry struct {
	obj   heap.Object
	class RootClass
}

// trackedContext pairs a live context with its per-context record.
type trackedContext struct {
	ctx            ScriptContext
	record         *ContextRecord
	externalHandle string
}

// Session is the per-runtime registry for one record/replay session. It owns
// the live-context list, the dead-context records, both pin sets, and the
// log-id index.
//
// CRITICAL: All mutation happens on the single script execution thread.
// The one exception, NotifyContextDestroyedDuringRecord, is constrained to a
// map check plus removal so it is safe from the collector's restricted
// finalization phase. Root-set changes must only happen at safe points
// between collector passes, never interleaved with a mark pass.
type Session struct {
	mode      Mode
	cfg       Config
	host      Host
	handleGen HandleGenerator
	logIDs    *LogIDAllocator

	// Live contexts in registration order, plus identity index.
	contexts []*trackedContext
	byCtx    map[ScriptContext]*trackedContext
	active   ScriptContext

	// Set when replay creates or destroys a context, so the replay driver
	// can notice the context set changed under it.
	contextChangedInReplay bool

	deadContexts []DeadContextSnapshot

	// Pin sets. roots holds general and special roots keyed by log id;
	// localRoots holds the transient debugger-visible roots that are
	// wholly replaced between snapshots. idIndex is the combined log-id
	// lookup, rebuilt when local roots are cleared.
	roots      map[LogID]rootEntry
	localRoots map[LogID]heap.Object
	idIndex    map[LogID]heap.Object
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithHandleGenerator overrides the external-handle generator.
// Tests use this with a FixedGenerator for deterministic handles.
func WithHandleGenerator(g HandleGenerator) SessionOption {
	return func(s *Session) {
		s.handleGen = g
	}
}

// WithLogIDAllocator overrides the log-id allocator, e.g. to resume the id
// sequence recorded in a snapshot.
func WithLogIDAllocator(a *LogIDAllocator) SessionOption {
	return func(s *Session) {
		s.logIDs = a
	}
}

// NewSession creates the session object for one record or replay run.
// The configuration is validated here; a malformed configuration is
// surfaced to the host at session start and is fatal.
func NewSession(mode Mode, cfg Config, host Host, opts ...SessionOption) (*Session, error) {
	if mode != ModeRecord && mode != ModeReplay {
		return nil, fmt.Errorf("session: invalid mode %d", mode)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		mode:       mode,
		cfg:        cfg,
		host:       host,
		handleGen:  UUIDv7Generator{},
		logIDs:     NewLogIDAllocator(),
		contexts:   make([]*trackedContext, 0, MaxContextCount),
		byCtx:      make(map[ScriptContext]*trackedContext, MaxContextCount),
		roots:      make(map[LogID]rootEntry),
		localRoots: make(map[LogID]heap.Object),
		idIndex:    make(map[LogID]heap.Object),
	}

	for _, opt := range opts {
		opt(s)
	}

	slog.Info("session created",
		"mode", mode,
		"uri", cfg.URI,
		"snap_interval", cfg.SnapInterval,
		"snap_history", cfg.SnapHistoryLength,
	)

	return s, nil
}

// Mode returns whether the session is recording or replaying.
func (s *Session) Mode() Mode {
	return s.mode
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Host returns the host callback bundle.
func (s *Session) Host() Host {
	return s.host
}

// LogIDs returns the session's log-id allocator.
func (s *Session) LogIDs() *LogIDAllocator {
	return s.logIDs
}

// CreateContextForRecord registers a new execution context with a recording
// session and binds its host-visible external handle.
// Fails with a CapacityError beyond MaxContextCount and with a DesyncError
// if the context or its id is already registered.
func (s *Session) CreateContextForRecord(ctx ScriptContext, cfg ContextConfig) (*ContextRecord, error) {
	return s.createContext(ctx, cfg)
}

// CreateContextForReplay registers a new execution context with a replaying
// session. Identical to CreateContextForRecord except that it flags the
// context-set change so the replay driver can re-sync.
func (s *Session) CreateContextForReplay(ctx ScriptContext, cfg ContextConfig) (*ContextRecord, error) {
	rec, err := s.createContext(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.contextChangedInReplay = true
	return rec, nil
}

func (s *Session) createContext(ctx ScriptContext, cfg ContextConfig) (*ContextRecord, error) {
	if len(s.contexts) >= MaxContextCount {
		return nil, &CapacityError{What: "tracked contexts", Limit: MaxContextCount, Got: len(s.contexts) + 1}
	}
	if _, dup := s.byCtx[ctx]; dup {
		return nil, &DesyncError{
			Code:      CodeDuplicateContext,
			Message:   "context registered twice",
			ContextID: ctx.ContextID(),
		}
	}
	for _, tc := range s.contexts {
		if tc.ctx.ContextID() == ctx.ContextID() {
			return nil, &DesyncError{
				Code:      CodeDuplicateContext,
				Message:   "context id registered twice",
				ContextID: ctx.ContextID(),
			}
		}
	}

	handle := cfg.ExternalHandle
	if handle == "" {
		handle = s.handleGen.Generate()
	}

	tc := &trackedContext{
		ctx:            ctx,
		record:         newContextRecord(ctx, cfg.Callbacks),
		externalHandle: handle,
	}
	s.contexts = append(s.contexts, tc)
	s.byCtx[ctx] = tc

	slog.Info("context registered",
		"context_id", ctx.ContextID(),
		"handle", handle,
		"live_count", len(s.contexts),
		"no_native", cfg.NoNative,
		"debug_mode", cfg.DebugMode,
	)

	return tc.record, nil
}

// SetActiveContext marks ctx as the context subsequent engine events are
// attributed to. Passing nil deactivates. At most one context is active at
// a time; activating an untracked context is a desync.
func (s *Session) SetActiveContext(ctx ScriptContext) error {
	if ctx != nil {
		if _, ok := s.byCtx[ctx]; !ok {
			return &DesyncError{
				Code:      CodeUnknownContext,
				Message:   "cannot activate untracked context",
				ContextID: ctx.ContextID(),
			}
		}
	}
	s.active = ctx
	return nil
}

// ActiveContext returns the currently active context, or nil.
func (s *Session) ActiveContext() ScriptContext {
	return s.active
}

// Contexts returns the live contexts in registration order.
// The slice is a copy; mutating it does not affect the session.
func (s *Session) Contexts() []ScriptContext {
	out := make([]ScriptContext, len(s.contexts))
	for i, tc := range s.contexts {
		out[i] = tc.ctx
	}
	return out
}

// RecordFor returns the per-context record for a tracked context.
func (s *Session) RecordFor(ctx ScriptContext) (*ContextRecord, error) {
	tc, ok := s.byCtx[ctx]
	if !ok {
		return nil, &DesyncError{
			Code:      CodeUnknownContext,
			Message:   "no record for untracked context",
			ContextID: ctx.ContextID(),
		}
	}
	return tc.record, nil
}

// ExternalHandleFor returns the host-visible handle bound at registration.
func (s *Session) ExternalHandleFor(ctx ScriptContext) (string, error) {
	tc, ok := s.byCtx[ctx]
	if !ok {
		return "", fmt.Errorf("external handle: %w", ErrNotFound)
	}
	return tc.externalHandle, nil
}

// NotifyContextDestroyedDuringRecord removes ctx from the live list.
//
// This can run from a restricted phase of collector processing where
// arbitrary engine state cannot be queried, so it does nothing beyond a
// membership check and removal: no allocation, no logging, and calling it
// for an untracked context is a harmless no-op.
func (s *Session) NotifyContextDestroyedDuringRecord(ctx ScriptContext) {
	tc, ok := s.byCtx[ctx]
	if !ok {
		return
	}
	delete(s.byCtx, ctx)
	for i := range s.contexts {
		if s.contexts[i] == tc {
			copy(s.contexts[i:], s.contexts[i+1:])
			s.contexts[len(s.contexts)-1] = nil
			s.contexts = s.contexts[:len(s.contexts)-1]
			break
		}
	}
	if s.active == ctx {
		s.active = nil
	}
}

// NotifyContextDestroyedDuringReplay captures the five singleton log ids of
// a context being destroyed during replay. The replay driver drains the
// dead-context list with DeadContexts and clears it once consumed.
func (s *Session) NotifyContextDestroyedDuringReplay(globalID, undefinedID, nullID, trueID, falseID LogID) {
	s.deadContexts = append(s.deadContexts, DeadContextSnapshot{
		GlobalID:    globalID,
		UndefinedID: undefinedID,
		NullID:      nullID,
		TrueID:      trueID,
		FalseID:     falseID,
	})
	s.contextChangedInReplay = true

	slog.Debug("dead context recorded",
		"global_id", globalID,
		"undefined_id", undefinedID,
		"dead_count", len(s.deadContexts),
	)
}

// DeadContexts returns the recorded dead-context snapshots in destruction
// order. The slice is a copy; the records persist until ClearDeadContexts.
func (s *Session) DeadContexts() []DeadContextSnapshot {
	out := make([]DeadContextSnapshot, len(s.deadContexts))
	copy(out, s.deadContexts)
	return out
}

// ClearDeadContexts empties the dead-context record list after the caller
// has consumed it.
func (s *Session) ClearDeadContexts() {
	s.deadContexts = s.deadContexts[:0]
}

// ContextChangedInReplay reports whether replay created or destroyed a
// context since the flag was last reset.
func (s *Session) ContextChangedInReplay() bool {
	return s.contextChangedInReplay
}

// ResetContextChangedInReplay clears the change flag.
func (s *Session) ResetContextChangedInReplay() {
	s.contextChangedInReplay = false
}

// AddTrackedRoot pins an arbitrary host-exposed object under its log id.
// Re-adding the same (id, object) pair is idempotent; re-binding an id to a
// different object is a desync.
func (s *Session) AddTrackedRoot(id LogID, obj heap.Object) error {
	return s.addRoot(id, obj, RootGeneral)
}

// RemoveTrackedRoot unpins a general root. Removing an id that was never
// added, or one bound to a different object, is a desync.
func (s *Session) RemoveTrackedRoot(id LogID, obj heap.Object) error {
	entry, ok := s.roots[id]
	if !ok {
		return &DesyncError{Code: CodeUnknownRoot, Message: "remove of root never added", RootID: id}
	}
	if entry.obj != obj {
		return &DesyncError{Code: CodeRootMismatch, Message: "remove of root bound to different object", RootID: id}
	}
	delete(s.roots, id)
	if _, local := s.localRoots[id]; !local {
		delete(s.idIndex, id)
	}
	return nil
}

// AddSpecialRoot pins one of the distinguished singleton objects (or an
// engine-designated always-special object). Kept in the same pin set as
// general roots but classified for O(1) identity re-binding during replay.
func (s *Session) AddSpecialRoot(id LogID, obj heap.Object) error {
	return s.addRoot(id, obj, RootSpecial)
}

// RemoveSpecialRoot unpins a special root by id alone; the singleton object
// may already be unreachable through the engine when this runs.
func (s *Session) RemoveSpecialRoot(id LogID) error {
	entry, ok := s.roots[id]
	if !ok {
		return &DesyncError{Code: CodeUnknownRoot, Message: "remove of special root never added", RootID: id}
	}
	if entry.class != RootSpecial {
		return &DesyncError{Code: CodeRootMismatch, Message: "remove-special of non-special root", RootID: id}
	}
	delete(s.roots, id)
	if _, local := s.localRoots[id]; !local {
		delete(s.idIndex, id)
	}
	return nil
}

// RootClassOf returns the classification computed when the root was added.
func (s *Session) RootClassOf(id LogID) (RootClass, bool) {
	entry, ok := s.roots[id]
	if !ok {
		return 0, false
	}
	return entry.class, true
}

// IsSpecialRoot reports whether id was registered through AddSpecialRoot.
// Tracking does not depend on this predicate; special roots are found via
// the same id-indexed lookup as everything else.
func (s *Session) IsSpecialRoot(id LogID) bool {
	entry, ok := s.roots[id]
	return ok && entry.class == RootSpecial
}

func (s *Session) addRoot(id LogID, obj heap.Object, class RootClass) error {
	if obj == nil {
		return &DesyncError{Code: CodeRootMismatch, Message: "root object is nil", RootID: id}
	}
	if entry, ok := s.roots[id]; ok {
		if entry.obj != obj || entry.class != class {
			return &DesyncError{Code: CodeRootMismatch, Message: "root id re-bound to different object", RootID: id}
		}
		return nil
	}
	s.roots[id] = rootEntry{obj: obj, class: class}
	s.idIndex[id] = obj
	return nil
}

// AddLocalRoot pins a transient debugger-visible root. Local roots are not
// removed individually; the whole set is replaced between snapshots via
// ClearLocalRootsAndRebuildIndex.
func (s *Session) AddLocalRoot(id LogID, obj heap.Object) error {
	if obj == nil {
		return &DesyncError{Code: CodeRootMismatch, Message: "local root object is nil", RootID: id}
	}
	s.localRoots[id] = obj
	if _, ok := s.idIndex[id]; !ok {
		s.idIndex[id] = obj
	}
	return nil
}

// ClearLocalRootsAndRebuildIndex drops the whole local root set and rebuilds
// the log-id index from the surviving general and special roots.
func (s *Session) ClearLocalRootsAndRebuildIndex() {
	clear(s.localRoots)
	clear(s.idIndex)
	for id, entry := range s.roots {
		s.idIndex[id] = entry.obj
	}
}

// LocalRootCount returns the size of the local pin set.
func (s *Session) LocalRootCount() int {
	return len(s.localRoots)
}

// LookupObjectByLogID resolves a log id to the live object it pins.
// A miss wraps ErrNotFound: expected during partial restores, callers must
// tolerate it.
func (s *Session) LookupObjectByLogID(id LogID) (heap.Object, error) {
	obj, ok := s.idIndex[id]
	if !ok {
		return nil, fmt.Errorf("log id %d: %w", id, ErrNotFound)
	}
	return obj, nil
}

// LookupContextByContextID finds a tracked context by its externally
// assigned id.
func (s *Session) LookupContextByContextID(id LogID) (ScriptContext, error) {
	for _, tc := range s.contexts {
		if tc.ctx.ContextID() == id {
			return tc.ctx, nil
		}
	}
	return nil, fmt.Errorf("context id %d: %w", id, ErrNotFound)
}

// ExtractSnapshotRoots produces the flattened list of currently rooted
// objects for the snapshot writer: general, special, and local roots,
// deduplicated, in ascending log-id order so the walk is deterministic.
func (s *Session) ExtractSnapshotRoots() []heap.Object {
	ids := make([]LogID, 0, len(s.idIndex))
	for id := range s.idIndex {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]heap.Object, 0, len(ids))
	seen := make(map[heap.Object]struct{}, len(ids))
	for _, id := range ids {
		obj := s.idIndex[id]
		if _, dup := seen[obj]; dup {
			continue
		}
		seen[obj] = struct{}{}
		out = append(out, obj)
	}
	return out
}

// LoadInvertedRootMap fills into with the object-to-log-id mapping of the
// current root set. When one object is pinned under several ids, the
// smallest id wins, matching the deterministic order of
// ExtractSnapshotRoots.
func (s *Session) LoadInvertedRootMap(into map[heap.Object]LogID) {
	ids := make([]LogID, 0, len(s.idIndex))
	for id := range s.idIndex {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		obj := s.idIndex[id]
		if _, present := into[obj]; !present {
			into[obj] = id
		}
	}
}

// InflateExternalObject asks the host to reconstruct an external object
// recorded under id and pins it as a general root, restoring the id binding
// during snapshot restore. The id must not already be bound.
func (s *Session) InflateExternalObject(id LogID) (heap.Object, error) {
	if s.host.CreateExternalObject == nil {
		return nil, fmt.Errorf("inflate external object %d: host provides no constructor", id)
	}
	if _, bound := s.idIndex[id]; bound {
		return nil, &DesyncError{Code: CodeRootMismatch, Message: "external object id already bound", RootID: id}
	}

	obj, err := s.host.CreateExternalObject()
	if err != nil {
		return nil, fmt.Errorf("inflate external object %d: %w", id, err)
	}
	if err := s.addRoot(id, obj, RootGeneral); err != nil {
		return nil, err
	}
	return obj, nil
}

// ResetForSnapshotRestore clears all context and root state ahead of
// loading a new snapshot generation. Idempotent and safe on a
// partially-initialized session; the log-id allocator and configuration
// survive the reset.
func (s *Session) ResetForSnapshotRestore() {
	for _, tc := range s.contexts {
		tc.record.ClearForSnapshotRestore()
	}
	s.contexts = s.contexts[:0]
	clear(s.byCtx)
	s.active = nil
	s.deadContexts = s.deadContexts[:0]
	s.contextChangedInReplay = false
	clear(s.roots)
	clear(s.localRoots)
	clear(s.idIndex)

	slog.Info("session reset for snapshot restore", "uri", s.cfg.URI)
}
