package session

import (
	"log/slog"

	"github.com/prince156/ChakraCore/internal/heap"
)

// UnitKind distinguishes how a top-level compiled unit entered the context.
type UnitKind int

const (
	// UnitScriptLoad is ordinary script loaded from source.
	UnitScriptLoad UnitKind = iota + 1
	// UnitNewFunction is a body compiled through the Function constructor.
	UnitNewFunction
	// UnitEval is a body compiled through eval.
	UnitEval
)

// TopLevelUnit associates a top-level compiled body with the kind and
// monotonic counter id it was registered under. The counter id
// disambiguates units with identical source text between record and replay.
type TopLevelUnit struct {
	Body      heap.FunctionBody
	Kind      UnitKind
	CounterID uint64
}

// PendingAsyncMutation is one queued out-of-band write to a byte buffer.
// The buffer is owned by the context's heap, not by this record. Queue order
// is the recorded log order, which is the only order replay may apply
// mutations in; real-time completion order is irrelevant.
type PendingAsyncMutation struct {
	Buffer     heap.Object
	StartIndex uint32
}

// mutationQueue is a plain FIFO over pending async mutations.
//
// All access happens on the context's single execution thread, so the queue
// carries no lock. Dequeued slots are zeroed so the underlying array does
// not retain buffer references past their drain.
type mutationQueue struct {
	items []PendingAsyncMutation
}

func (q *mutationQueue) enqueue(m PendingAsyncMutation) {
	q.items = append(q.items, m)
}

func (q *mutationQueue) dequeue() (PendingAsyncMutation, bool) {
	if len(q.items) == 0 {
		return PendingAsyncMutation{}, false
	}
	m := q.items[0]
	q.items[0] = PendingAsyncMutation{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return m, true
}

func (q *mutationQueue) snapshot() []PendingAsyncMutation {
	out := make([]PendingAsyncMutation, len(q.items))
	copy(out, q.items)
	return out
}

func (q *mutationQueue) reset() {
	q.items = nil
}

// ContextRecord is the per-context bookkeeping for one execution context:
// its top-level script units, the function-body parent linkage, and the
// pending-async-mutation queue.
//
// The record holds non-owning associations into the shared heap; pinning of
// registered bodies is the session root area's concern.
type ContextRecord struct {
	ctx       ScriptContext
	callbacks ContextCallbacks

	pending mutationQueue

	scriptLoads  []TopLevelUnit
	newFunctions []TopLevelUnit
	evals        []TopLevelUnit

	// registered is the top-level membership set backing
	// IsUnitAlreadyRegistered; parents maps every processed body to its
	// lexical parent (absent for global code).
	registered map[heap.FunctionBody]struct{}
	parents    map[heap.FunctionBody]heap.FunctionBody
}

func newContextRecord(ctx ScriptContext, callbacks ContextCallbacks) *ContextRecord {
	return &ContextRecord{
		ctx:        ctx,
		callbacks:  callbacks,
		registered: make(map[heap.FunctionBody]struct{}),
		parents:    make(map[heap.FunctionBody]heap.FunctionBody),
	}
}

// Context returns the execution context this record belongs to.
func (r *ContextRecord) Context() ScriptContext {
	return r.ctx
}

// EnqueuePendingAsyncMutation appends a queued out-of-band buffer write.
// No deduplication and no reordering: arrival order here is log order.
func (r *ContextRecord) EnqueuePendingAsyncMutation(buffer heap.Object, startIndex uint32) {
	r.pending.enqueue(PendingAsyncMutation{Buffer: buffer, StartIndex: startIndex})

	slog.Debug("pending async mutation queued",
		"context_id", r.ctx.ContextID(),
		"start_index", startIndex,
		"queue_len", len(r.pending.items),
	)
}

// DrainPendingAsyncMutation pops the front of the queue for replay
// application; the caller realizes the queued write against the
// reconstructed target buffer. Draining an empty queue means the log and
// the replay state disagree, which is fatal.
func (r *ContextRecord) DrainPendingAsyncMutation() (PendingAsyncMutation, error) {
	m, ok := r.pending.dequeue()
	if !ok {
		return PendingAsyncMutation{}, &DesyncError{
			Code:      CodeEmptyAsyncQueue,
			Message:   "drain of empty pending-async-mutation queue",
			ContextID: r.ctx.ContextID(),
		}
	}
	return m, nil
}

// PendingAsyncMutations exports the queue contents in application order for
// the snapshot writer, without draining.
func (r *ContextRecord) PendingAsyncMutations() []PendingAsyncMutation {
	return r.pending.snapshot()
}

// ClearPendingForSnapshotRestore empties the mutation queue. Idempotent.
func (r *ContextRecord) ClearPendingForSnapshotRestore() {
	r.pending.reset()
}

// RegisterScriptLoad records a top-level unit compiled from loaded script.
func (r *ContextRecord) RegisterScriptLoad(body heap.FunctionBody, counterID uint64) error {
	return r.registerUnit(&r.scriptLoads, body, UnitScriptLoad, counterID)
}

// RegisterNewFunction records a top-level unit compiled through the
// Function constructor.
func (r *ContextRecord) RegisterNewFunction(body heap.FunctionBody, counterID uint64) error {
	return r.registerUnit(&r.newFunctions, body, UnitNewFunction, counterID)
}

// RegisterEval records a top-level unit compiled through eval.
func (r *ContextRecord) RegisterEval(body heap.FunctionBody, counterID uint64) error {
	return r.registerUnit(&r.evals, body, UnitEval, counterID)
}

func (r *ContextRecord) registerUnit(list *[]TopLevelUnit, body heap.FunctionBody, kind UnitKind, counterID uint64) error {
	if _, dup := r.registered[body]; dup {
		return &DesyncError{
			Code:      CodeDuplicateUnit,
			Message:   "top-level unit registered twice",
			ContextID: r.ctx.ContextID(),
		}
	}

	*list = append(*list, TopLevelUnit{Body: body, Kind: kind, CounterID: counterID})
	r.registered[body] = struct{}{}
	r.processBodyOnLoad(body, nil)

	if r.callbacks.OnTopLevelUnit != nil {
		r.callbacks.OnTopLevelUnit(body, kind)
	}

	slog.Debug("top-level unit registered",
		"context_id", r.ctx.ContextID(),
		"source", body.SourceName(),
		"kind", kind,
		"counter_id", counterID,
	)

	return nil
}

// processBodyOnLoad populates the parent map for body and, recursively, for
// every lexically nested body. Closures know their parent at creation, so
// one pass at registration time is enough.
func (r *ContextRecord) processBodyOnLoad(body, parent heap.FunctionBody) {
	if parent != nil {
		r.parents[body] = parent
	}
	for _, nested := range body.NestedBodies() {
		r.processBodyOnLoad(nested, body)
	}
}

// IsUnitAlreadyRegistered reports whether body is already tracked as a
// top-level unit, so cached bodies from repeated eval or Function calls
// with identical text are not re-registered.
func (r *ContextRecord) IsUnitAlreadyRegistered(body heap.FunctionBody) bool {
	_, ok := r.registered[body]
	return ok
}

// ResolveParentUnit returns the lexically enclosing body, or nil for global
// code.
func (r *ContextRecord) ResolveParentUnit(body heap.FunctionBody) heap.FunctionBody {
	return r.parents[body]
}

// FindUnitBySourceName returns the first registered top-level unit whose
// source name matches, searching script loads, then Function-constructor
// units, then evals, each in registration order.
//
// Source names are NOT guaranteed unique; with several matches the first is
// returned and callers must tolerate the ambiguity.
func (r *ContextRecord) FindUnitBySourceName(name string) (heap.FunctionBody, bool) {
	for _, list := range [][]TopLevelUnit{r.scriptLoads, r.newFunctions, r.evals} {
		for _, unit := range list {
			if unit.Body.SourceName() == name {
				return unit.Body, true
			}
		}
	}
	return nil, false
}

// LoadedUnits exports the three top-level unit lists in registration order.
// The slices are copies.
func (r *ContextRecord) LoadedUnits() (scriptLoads, newFunctions, evals []TopLevelUnit) {
	scriptLoads = append([]TopLevelUnit(nil), r.scriptLoads...)
	newFunctions = append([]TopLevelUnit(nil), r.newFunctions...)
	evals = append([]TopLevelUnit(nil), r.evals...)
	return scriptLoads, newFunctions, evals
}

// ClearForSnapshotRestore resets all unit tracking and the pending queue.
// Idempotent and safe on a partially-initialized record.
func (r *ContextRecord) ClearForSnapshotRestore() {
	r.pending.reset()
	r.scriptLoads = nil
	r.newFunctions = nil
	r.evals = nil
	clear(r.registered)
	clear(r.parents)
}
