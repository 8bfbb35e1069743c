// Package testutil provides scriptable fake implementations of the heap
// interfaces for tests: objects with controllable property insertion order,
// arrays, functions with bodies and closure environments, and a recording
// mark table.
package testutil

import (
	"sync/atomic"

	"github.com/prince156/ChakraCore/internal/heap"
	"github.com/prince156/ChakraCore/internal/session"
)

var nextID atomic.Uint64

// NextID returns a fresh object/body/scope id for fixtures that do not care
// about the concrete value.
func NextID() uint64 {
	return nextID.Add(1)
}

// Object is a fake plain object. Properties keep insertion order, so tests
// can deliberately shuffle insertion to prove the path walk ignores it.
type Object struct {
	id    uint64
	kind  heap.Kind
	names []string
	props map[string]heap.Property
}

// NewObject creates a plain fake object.
func NewObject() *Object {
	return &Object{
		id:    NextID(),
		kind:  heap.KindPlain,
		props: make(map[string]heap.Property),
	}
}

// Set adds or replaces a data property. Insertion order is preserved for
// new names. Returns the object for chaining.
func (o *Object) Set(name string, value heap.Object) *Object {
	o.setProp(name, heap.Property{Value: value})
	return o
}

// SetAccessor adds or replaces an accessor property.
func (o *Object) SetAccessor(name string, getter, setter heap.Object) *Object {
	o.setProp(name, heap.Property{Getter: getter, Setter: setter})
	return o
}

func (o *Object) setProp(name string, p heap.Property) {
	if _, exists := o.props[name]; !exists {
		o.names = append(o.names, name)
	}
	o.props[name] = p
}

// ObjectID implements heap.Object.
func (o *Object) ObjectID() uint64 { return o.id }

// Kind implements heap.Object.
func (o *Object) Kind() heap.Kind { return o.kind }

// PropertyNames implements heap.Object, returning insertion order.
func (o *Object) PropertyNames() []string {
	return append([]string(nil), o.names...)
}

// Property implements heap.Object.
func (o *Object) Property(name string) (heap.Property, bool) {
	p, ok := o.props[name]
	return p, ok
}

// Array is a fake array object traversed by index.
type Array struct {
	Object
	elems []heap.Object
}

// NewArray creates a fake array with the given elements.
func NewArray(elems ...heap.Object) *Array {
	a := &Array{
		Object: Object{id: NextID(), kind: heap.KindArray, props: make(map[string]heap.Property)},
		elems:  elems,
	}
	return a
}

// Len implements heap.ArrayObject.
func (a *Array) Len() int { return len(a.elems) }

// Element implements heap.ArrayObject.
func (a *Array) Element(i int) heap.Object { return a.elems[i] }

// Function is a fake function object with a body and closure environments.
type Function struct {
	Object
	body *Body
	envs []heap.Environment
}

// NewFunction creates a fake function object around body.
func NewFunction(body *Body, envs ...heap.Environment) *Function {
	return &Function{
		Object: Object{id: NextID(), kind: heap.KindFunction, props: make(map[string]heap.Property)},
		body:   body,
		envs:   envs,
	}
}

// Body implements heap.FunctionObject.
func (f *Function) Body() heap.FunctionBody {
	if f.body == nil {
		return nil
	}
	return f.body
}

// Environments implements heap.FunctionObject.
func (f *Function) Environments() []heap.Environment {
	return append([]heap.Environment(nil), f.envs...)
}

// Environment is a fake closure scope frame.
type Environment struct {
	slots []heap.Object
}

// NewEnvironment creates an environment with the given slot values.
// Non-object slots are modeled as nil entries.
func NewEnvironment(slots ...heap.Object) *Environment {
	return &Environment{slots: slots}
}

// SlotCount implements heap.Environment.
func (e *Environment) SlotCount() int { return len(e.slots) }

// Slot implements heap.Environment.
func (e *Environment) Slot(i int) heap.Object { return e.slots[i] }

// Body is a fake compiled function body.
type Body struct {
	id     uint64
	source string
	nested []*Body
	scopes []*Scope
}

// NewBody creates a fake body for a source name.
func NewBody(source string) *Body {
	return &Body{id: NextID(), source: source}
}

// AddNested attaches a lexically nested body and returns it.
func (b *Body) AddNested(source string) *Body {
	n := NewBody(source)
	b.nested = append(b.nested, n)
	return n
}

// AddScope attaches a debugger scope and returns it.
func (b *Body) AddScope() *Scope {
	s := &Scope{id: NextID()}
	b.scopes = append(b.scopes, s)
	return s
}

// BodyID implements heap.FunctionBody.
func (b *Body) BodyID() uint64 { return b.id }

// SourceName implements heap.FunctionBody.
func (b *Body) SourceName() string { return b.source }

// NestedBodies implements heap.FunctionBody.
func (b *Body) NestedBodies() []heap.FunctionBody {
	out := make([]heap.FunctionBody, len(b.nested))
	for i, n := range b.nested {
		out[i] = n
	}
	return out
}

// ScopeCount implements heap.FunctionBody.
func (b *Body) ScopeCount() int { return len(b.scopes) }

// ScopeAt implements heap.FunctionBody.
func (b *Body) ScopeAt(i int) heap.DebuggerScope { return b.scopes[i] }

// Scope is a fake debugger scope.
type Scope struct {
	id uint64
}

// ScopeID implements heap.DebuggerScope.
func (s *Scope) ScopeID() uint64 { return s.id }

// MarkTable records everything marked, for asserting the snapshot mark pass.
type MarkTable struct {
	Objects []heap.Object
	Bodies  []heap.FunctionBody
	Scopes  []heap.DebuggerScope
}

// NewMarkTable creates an empty recording mark table.
func NewMarkTable() *MarkTable {
	return &MarkTable{}
}

// MarkObject implements heap.MarkTable.
func (m *MarkTable) MarkObject(obj heap.Object) {
	m.Objects = append(m.Objects, obj)
}

// MarkBody implements heap.MarkTable.
func (m *MarkTable) MarkBody(body heap.FunctionBody) {
	m.Bodies = append(m.Bodies, body)
}

// MarkScope implements heap.MarkTable.
func (m *MarkTable) MarkScope(scope heap.DebuggerScope) {
	m.Scopes = append(m.Scopes, scope)
}

// Context is a fake script context for session tests.
type Context struct {
	id     session.LogID
	global heap.Object
}

// NewContext creates a fake context with the given externally-assigned id.
func NewContext(id session.LogID) *Context {
	return &Context{id: id, global: NewObject()}
}

// NewContextWithGlobal creates a fake context with an explicit global
// object.
func NewContextWithGlobal(id session.LogID, global heap.Object) *Context {
	return &Context{id: id, global: global}
}

// ContextID implements session.ScriptContext.
func (c *Context) ContextID() session.LogID { return c.id }

// GlobalObject implements session.ScriptContext.
func (c *Context) GlobalObject() heap.Object { return c.global }
