package wellknown

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// PathToken is the canonical, address-independent name of a well-known
// object, function body, or debugger scope. Tokens are hierarchical: a
// declared root name followed by property, index, environment, body, and
// scope segments. One entity has at most one token, assigned the first time
// the canonical traversal reaches it.
type PathToken string

// Accessor tags distinguish the getter and setter of an accessor property,
// which share the property name.
const (
	accessorTagGetter = "@getter"
	accessorTagSetter = "@setter"
)

// canonicalName returns the NFC-normalized form of a property or root name.
// Path identity is defined over normalized names so that two runs producing
// different (but canonically equal) encodings of the same name still agree
// on every token.
func canonicalName(name string) string {
	return norm.NFC.String(name)
}

// buildPropertyPath names a child stored at a named property of parent,
// with an optional accessor tag.
func buildPropertyPath(parent PathToken, name, accessorTag string) PathToken {
	return PathToken(fmt.Sprintf("%s.%s%s", parent, canonicalName(name), accessorTag))
}

// buildArrayIndexPath names an element of an array-typed parent.
func buildArrayIndexPath(parent PathToken, idx int) PathToken {
	return PathToken(fmt.Sprintf("%s[%d]", parent, idx))
}

// buildEnvironmentSlotPath names a value captured in closure environment
// envIdx at slot slotIdx of parent.
func buildEnvironmentSlotPath(parent PathToken, envIdx, slotIdx int) PathToken {
	return PathToken(fmt.Sprintf("%s#env[%d].slot[%d]", parent, envIdx, slotIdx))
}

// buildBodyPath names the compiled body of a well-known function.
func buildBodyPath(parent PathToken) PathToken {
	return PathToken(fmt.Sprintf("%s!body", parent))
}

// buildScopePath names the debugger scope at index idx of a named body.
func buildScopePath(body PathToken, idx int) PathToken {
	return PathToken(fmt.Sprintf("%s!scope[%d]", body, idx))
}
