// Package wellknown assigns canonical, lexicographically stable path names
// to every object, function body, and debugger scope reachable from the
// engine's declared roots, and answers the inverse path-to-entity queries.
// The snapshot format references built-ins symbolically through these
// tokens instead of by address, which is what lets a snapshot taken in one
// run be restored against the differently-allocated heap of another.
package wellknown

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/prince156/ChakraCore/internal/heap"
	"github.com/prince156/ChakraCore/internal/ordering"
)

// Resolver owns the path-string maps and the derived sorted lookup lists.
// It never owns the entities it names; those belong to the heap and its
// collector.
//
// Mutation (seeding roots, walking) happens on the single script thread.
// Once the walk is complete the resolver is effectively immutable and every
// query is a pure lookup.
type Resolver struct {
	worklist []heap.Object

	objPaths   map[heap.Object]PathToken
	bodyPaths  map[heap.FunctionBody]PathToken
	scopePaths map[heap.DebuggerScope]PathToken

	// Assignment-order entity lists. Assignment order is deterministic by
	// construction, so sorting these (rather than ranging over the maps)
	// keeps the derived lists reproducible.
	objects []heap.Object
	bodies  []heap.FunctionBody
	scopes  []heap.DebuggerScope

	// Sorted views for binary search, rebuilt lazily after assignments.
	sortedObjects []heap.Object
	sortedBodies  []heap.FunctionBody
	sortedScopes  []heap.DebuggerScope
	sorted        bool
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		objPaths:   make(map[heap.Object]PathToken),
		bodyPaths:  make(map[heap.FunctionBody]PathToken),
		scopePaths: make(map[heap.DebuggerScope]PathToken),
	}
}

// EnqueueRootObject seeds the walk with a declared root. The root's path is
// its declared name. Seeding the same object twice keeps the first name
// (first assignment wins).
func (r *Resolver) EnqueueRootObject(name string, obj heap.Object) {
	if obj == nil {
		return
	}
	r.assignObject(obj, PathToken(canonicalName(name)))
}

// Walk drains the worklist, assigning a path to every reachable eligible
// entity. Enumerable property names are visited in code-point order of
// their canonical form, never in insertion order: heap layout and property
// insertion order may differ between the recording run and a replay run,
// but code-point order of names does not.
//
// Walk may be called again after further seeding; already-assigned entities
// keep their paths.
func (r *Resolver) Walk() {
	for len(r.worklist) > 0 {
		obj := r.worklist[0]
		r.worklist[0] = nil
		r.worklist = r.worklist[1:]

		r.visit(obj)
	}

	slog.Debug("well-known walk complete",
		"objects", len(r.objects),
		"bodies", len(r.bodies),
		"scopes", len(r.scopes),
	)
}

func (r *Resolver) visit(obj heap.Object) {
	parent := r.objPaths[obj]

	if arr, ok := obj.(heap.ArrayObject); ok {
		for i := 0; i < arr.Len(); i++ {
			r.assignObject(arr.Element(i), buildArrayIndexPath(parent, i))
		}
	}

	if fn, ok := obj.(heap.FunctionObject); ok {
		r.visitFunction(fn, parent)
	}

	names := obj.PropertyNames()
	sort.Slice(names, func(i, j int) bool {
		return canonicalName(names[i]) < canonicalName(names[j])
	})

	for _, name := range names {
		prop, ok := obj.Property(name)
		if !ok {
			continue
		}
		r.assignObject(prop.Value, buildPropertyPath(parent, name, ""))
		r.assignObject(prop.Getter, buildPropertyPath(parent, name, accessorTagGetter))
		r.assignObject(prop.Setter, buildPropertyPath(parent, name, accessorTagSetter))
	}
}

// visitFunction names the compiled body and debugger scopes of a well-known
// function relative to the function's own path, and walks captured closure
// environment slots.
func (r *Resolver) visitFunction(fn heap.FunctionObject, parent PathToken) {
	if body := fn.Body(); body != nil {
		bodyPath := buildBodyPath(parent)
		if r.assignBody(body, bodyPath) {
			for i := 0; i < body.ScopeCount(); i++ {
				r.assignScope(body.ScopeAt(i), buildScopePath(bodyPath, i))
			}
		}
	}

	for envIdx, env := range fn.Environments() {
		for slotIdx := 0; slotIdx < env.SlotCount(); slotIdx++ {
			r.assignObject(env.Slot(slotIdx), buildEnvironmentSlotPath(parent, envIdx, slotIdx))
		}
	}
}

// assignObject gives obj its path if it has none yet and enqueues it for
// traversal. First assignment wins; re-reaching a named object is a no-op.
func (r *Resolver) assignObject(obj heap.Object, path PathToken) {
	if obj == nil {
		return
	}
	if _, assigned := r.objPaths[obj]; assigned {
		return
	}
	r.objPaths[obj] = path
	r.objects = append(r.objects, obj)
	r.worklist = append(r.worklist, obj)
	r.sorted = false
}

func (r *Resolver) assignBody(body heap.FunctionBody, path PathToken) bool {
	if _, assigned := r.bodyPaths[body]; assigned {
		return false
	}
	r.bodyPaths[body] = path
	r.bodies = append(r.bodies, body)
	r.sorted = false
	return true
}

func (r *Resolver) assignScope(scope heap.DebuggerScope, path PathToken) {
	if scope == nil {
		return
	}
	if _, assigned := r.scopePaths[scope]; assigned {
		return
	}
	r.scopePaths[scope] = path
	r.scopes = append(r.scopes, scope)
	r.sorted = false
}

// ResolveObjectPath returns the path token of a well-known object. An
// object with no token here is an internal naming inconsistency and fatal.
func (r *Resolver) ResolveObjectPath(obj heap.Object) (PathToken, error) {
	path, ok := r.objPaths[obj]
	if !ok {
		return "", &NamingError{Entity: "object", Message: "no path token assigned"}
	}
	return path, nil
}

// ResolveBodyPath returns the path token of a well-known function body.
func (r *Resolver) ResolveBodyPath(body heap.FunctionBody) (PathToken, error) {
	path, ok := r.bodyPaths[body]
	if !ok {
		return "", &NamingError{Entity: "function body", Message: "no path token assigned"}
	}
	return path, nil
}

// ResolveScopePathIfPresent returns the path token of a debugger scope, or
// ok=false when the scope legitimately has none. Not every debugger scope
// is reachable from a well-known function, so absence is a normal branch,
// never an error.
func (r *Resolver) ResolveScopePathIfPresent(scope heap.DebuggerScope) (PathToken, bool) {
	path, ok := r.scopePaths[scope]
	return path, ok
}

// LookupObjectByPath resolves a stored token back to the object it names.
func (r *Resolver) LookupObjectByPath(token PathToken) (heap.Object, error) {
	r.ensureSorted()
	idx, err := ordering.SearchByName(r.sortedObjects, r.objectName, string(token))
	if err != nil {
		return nil, fmt.Errorf("object path %q: %w", token, ErrNotFound)
	}
	return r.sortedObjects[idx], nil
}

// LookupBodyByPath resolves a stored token back to the function body it
// names.
func (r *Resolver) LookupBodyByPath(token PathToken) (heap.FunctionBody, error) {
	r.ensureSorted()
	idx, err := ordering.SearchByName(r.sortedBodies, r.bodyName, string(token))
	if err != nil {
		return nil, fmt.Errorf("function body path %q: %w", token, ErrNotFound)
	}
	return r.sortedBodies[idx], nil
}

// LookupScopeByPath resolves a stored token back to the debugger scope it
// names.
func (r *Resolver) LookupScopeByPath(token PathToken) (heap.DebuggerScope, error) {
	r.ensureSorted()
	idx, err := ordering.SearchByName(r.sortedScopes, r.scopeName, string(token))
	if err != nil {
		return nil, fmt.Errorf("debugger scope path %q: %w", token, ErrNotFound)
	}
	return r.sortedScopes[idx], nil
}

// MarkWellKnownObjects adds every named entity to the caller-supplied mark
// collection, so the collector pass that builds the snapshot keeps them
// reachable while marking.
func (r *Resolver) MarkWellKnownObjects(marks heap.MarkTable) {
	r.ensureSorted()
	for _, obj := range r.sortedObjects {
		marks.MarkObject(obj)
	}
	for _, body := range r.sortedBodies {
		marks.MarkBody(body)
	}
	for _, scope := range r.sortedScopes {
		marks.MarkScope(scope)
	}
}

// Counts returns how many objects, bodies, and scopes carry tokens.
func (r *Resolver) Counts() (objects, bodies, scopes int) {
	return len(r.objects), len(r.bodies), len(r.scopes)
}

// AssignedObjectPaths returns every (token, object) pairing in token order.
// Used by snapshot diagnostics and golden tests.
func (r *Resolver) AssignedObjectPaths() []PathToken {
	r.ensureSorted()
	out := make([]PathToken, len(r.sortedObjects))
	for i, obj := range r.sortedObjects {
		out[i] = r.objPaths[obj]
	}
	return out
}

// AssignedBodyPaths returns every body token in token order.
func (r *Resolver) AssignedBodyPaths() []PathToken {
	r.ensureSorted()
	out := make([]PathToken, len(r.sortedBodies))
	for i, body := range r.sortedBodies {
		out[i] = r.bodyPaths[body]
	}
	return out
}

// AssignedScopePaths returns every scope token in token order.
func (r *Resolver) AssignedScopePaths() []PathToken {
	r.ensureSorted()
	out := make([]PathToken, len(r.sortedScopes))
	for i, scope := range r.sortedScopes {
		out[i] = r.scopePaths[scope]
	}
	return out
}

func (r *Resolver) objectName(obj heap.Object) string {
	return string(r.objPaths[obj])
}

func (r *Resolver) bodyName(body heap.FunctionBody) string {
	return string(r.bodyPaths[body])
}

func (r *Resolver) scopeName(scope heap.DebuggerScope) string {
	return string(r.scopePaths[scope])
}

// ensureSorted rebuilds the sorted lookup views from the assignment-order
// lists.
func (r *Resolver) ensureSorted() {
	if r.sorted {
		return
	}

	r.sortedObjects = append(r.sortedObjects[:0], r.objects...)
	ordering.SortByName(r.sortedObjects, r.objectName)

	r.sortedBodies = append(r.sortedBodies[:0], r.bodies...)
	ordering.SortByName(r.sortedBodies, r.bodyName)

	r.sortedScopes = append(r.sortedScopes[:0], r.scopes...)
	ordering.SortByName(r.sortedScopes, r.scopeName)

	r.sorted = true
}
