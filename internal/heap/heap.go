// Package heap defines the interfaces this core consumes from the script
// engine's heap and tracing collector. The core never owns the objects it
// tracks; it holds identities handed out by these interfaces and hands them
// back unchanged.
package heap

// Kind classifies an object for path-walk purposes.
type Kind int

const (
	// KindPlain is an ordinary object traversed by named properties.
	KindPlain Kind = iota + 1
	// KindArray is traversed by numeric index instead of property name.
	KindArray
	// KindFunction additionally exposes a compiled body and closure
	// environments.
	KindFunction
)

// Object is the collector-visible identity of a script object.
//
// ObjectID is stable while the object is unmoved within one traversal; it is
// NOT stable across collections, which is exactly why the session layer keys
// long-lived tracking by log id instead.
type Object interface {
	ObjectID() uint64
	Kind() Kind

	// PropertyNames returns own enumerable property names in insertion
	// order. Callers that need determinism must sort; insertion order may
	// legitimately differ between a recording and its replay.
	PropertyNames() []string

	// Property returns the descriptor for a named property.
	// ok is false if the property does not exist.
	Property(name string) (Property, bool)
}

// Property is a property descriptor. Value is nil for pure accessor
// properties; Getter/Setter are nil for plain data properties. Non-object
// values (primitives) are represented as nil and skipped by the path walk.
type Property struct {
	Value  Object
	Getter Object
	Setter Object
}

// ArrayObject exposes indexed elements. Elements that are not objects are
// returned as nil.
type ArrayObject interface {
	Object
	Len() int
	Element(i int) Object
}

// FunctionObject exposes the compiled body and captured closure
// environments of a function object.
type FunctionObject interface {
	Object
	Body() FunctionBody
	Environments() []Environment
}

// Environment is one closure scope frame; slots hold captured values.
// Non-object slots are returned as nil.
type Environment interface {
	SlotCount() int
	Slot(i int) Object
}

// FunctionBody is a compiled top-level or nested function body. Nested
// bodies are the lexically enclosed function bodies; a closure always knows
// its parent at creation, so the nesting is fixed once the body compiles.
type FunctionBody interface {
	BodyID() uint64
	SourceName() string
	NestedBodies() []FunctionBody
	ScopeCount() int
	ScopeAt(i int) DebuggerScope
}

// DebuggerScope is a debugger-visible scope attached to a function body.
type DebuggerScope interface {
	ScopeID() uint64
}

// MarkTable is the collector-facing sink used while building a snapshot:
// everything added must stay reachable for the duration of the marking
// phase.
type MarkTable interface {
	MarkObject(obj Object)
	MarkBody(body FunctionBody)
	MarkScope(scope DebuggerScope)
}
