package wellknown

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a path lookup for a token the resolver never
// assigned. For the strict Lookup*ByPath operations this means the snapshot
// names an entity the current run does not know, which callers treat as
// fatal for the session.
var ErrNotFound = errors.New("unknown well-known path")

// NamingError reports an internal naming inconsistency: an entity that was
// expected to carry a path token does not. A snapshot reaching an unnamed
// entity means the recorded walk and the live walk have diverged, which is
// fatal.
type NamingError struct {
	// Entity says what kind of entity missed: "object", "function body",
	// or "debugger scope".
	Entity string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *NamingError) Error() string {
	return fmt.Sprintf("naming inconsistency: %s: %s", e.Entity, e.Message)
}

// IsNamingError returns true if the error is a naming inconsistency.
// Uses errors.As to handle wrapped errors.
func IsNamingError(err error) bool {
	var ne *NamingError
	return errors.As(err, &ne)
}
