// Package rootspec compiles the engine's well-known root manifests. Roots
// are the engine-declared top-level objects the canonical path walk starts
// from; declaring them in CUE keeps the root set versioned data rather than
// code, and lets the manifest be validated before a session starts.
//
// A manifest looks like:
//
//	roots: {
//		global:    {special: true, singleton: "global"}
//		undefined: {special: true, singleton: "undefined"}
//		Math:      {}
//	}
package rootspec

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// Singleton kinds that may be bound to a special root. The five singleton
// values are the ones whose log ids survive context teardown in a
// DeadContextSnapshot.
var validSingletons = map[string]bool{
	"global":    true,
	"undefined": true,
	"null":      true,
	"true":      true,
	"false":     true,
}

// Root describes one engine-declared top-level root.
type Root struct {
	// Name is both the manifest key and the root's path segment in the
	// well-known walk.
	Name string

	// Special marks the root for special-root registration (identity
	// re-binding during replay) instead of the general pin set.
	Special bool

	// Singleton names which singleton value a special root is, or "".
	Singleton string
}

// CompileError is a manifest compilation error with CUE position info.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileRoot parses a single root declaration from its CUE value.
// The root name comes from the struct label.
func CompileRoot(v cue.Value) (*Root, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "root", Message: err.Error(), Pos: v.Pos()}
	}

	root := &Root{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		root.Name = labels[len(labels)-1].String()
	}
	if root.Name == "" {
		return nil, &CompileError{Field: "name", Message: "root name is required", Pos: v.Pos()}
	}

	specialVal := v.LookupPath(cue.ParsePath("special"))
	if specialVal.Exists() {
		special, err := specialVal.Bool()
		if err != nil {
			return nil, &CompileError{Field: "special", Message: "special must be a bool", Pos: specialVal.Pos()}
		}
		root.Special = special
	}

	singletonVal := v.LookupPath(cue.ParsePath("singleton"))
	if singletonVal.Exists() {
		singleton, err := singletonVal.String()
		if err != nil {
			return nil, &CompileError{Field: "singleton", Message: "singleton must be a string", Pos: singletonVal.Pos()}
		}
		if !validSingletons[singleton] {
			return nil, &CompileError{
				Field:   "singleton",
				Message: fmt.Sprintf("unknown singleton %q", singleton),
				Pos:     singletonVal.Pos(),
			}
		}
		if !root.Special {
			return nil, &CompileError{
				Field:   "singleton",
				Message: "singleton roots must be declared special",
				Pos:     singletonVal.Pos(),
			}
		}
		root.Singleton = singleton
	}

	return root, nil
}

// CompileRoots parses a whole manifest value: the struct under "roots".
// Declaration order in the manifest is preserved; the walk seeds roots in
// this order, which makes it part of the canonical traversal.
func CompileRoots(v cue.Value) ([]Root, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "roots", Message: err.Error(), Pos: v.Pos()}
	}

	rootsVal := v.LookupPath(cue.ParsePath("roots"))
	if !rootsVal.Exists() {
		return nil, &CompileError{Field: "roots", Message: "roots struct is required", Pos: v.Pos()}
	}

	iter, err := rootsVal.Fields()
	if err != nil {
		return nil, &CompileError{Field: "roots", Message: fmt.Sprintf("iterating roots: %v", err), Pos: rootsVal.Pos()}
	}

	var roots []Root
	seen := make(map[string]bool)
	for iter.Next() {
		root, err := CompileRoot(iter.Value())
		if err != nil {
			return nil, err
		}
		if seen[root.Name] {
			return nil, &CompileError{
				Field:   "roots",
				Message: fmt.Sprintf("duplicate root %q", root.Name),
				Pos:     iter.Value().Pos(),
			}
		}
		seen[root.Name] = true
		roots = append(roots, *root)
	}

	if len(roots) == 0 {
		return nil, &CompileError{Field: "roots", Message: "at least one root is required", Pos: rootsVal.Pos()}
	}

	return roots, nil
}
