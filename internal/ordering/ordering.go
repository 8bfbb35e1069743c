// Package ordering provides deterministic sort and search over entities with
// assigned names. It is used to give the well-known path tables a stable
// traversal order that does not depend on map iteration or heap layout.
package ordering

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameMissing is returned by SearchByName when the key is absent.
// A must-find caller hitting this has an internal naming inconsistency.
var ErrNameMissing = errors.New("name not present in sorted list")

// gaps is the gap sequence for SortByName. Each pass is an insertion sort
// restricted to elements gap apart; the final gap of 1 completes a plain
// insertion sort. In-place and allocation-free regardless of input
// distribution.
var gaps = [8]int{701, 301, 132, 57, 23, 10, 4, 1}

// SortByName sorts entities in-place into non-decreasing lexicographic
// (code-point) order of their assigned names.
//
// nameOf must be a pure function of the entity for the duration of the call.
// Entities with equal names keep a deterministic relative order given a
// deterministic input order.
func SortByName[T any](entities []T, nameOf func(T) string) {
	n := len(entities)
	for _, gap := range gaps {
		for i := gap; i < n; i++ {
			tmp := entities[i]
			tmpName := nameOf(tmp)

			j := i
			for ; j >= gap && strings.Compare(nameOf(entities[j-gap]), tmpName) > 0; j -= gap {
				entities[j] = entities[j-gap]
			}
			entities[j] = tmp
		}
	}
}

// SearchByName finds the index of the entity whose assigned name equals key
// in a list previously sorted by SortByName. Absence is an error: callers
// use this form when a miss means the name tables are inconsistent.
func SearchByName[T any](entities []T, nameOf func(T) string, key string) (int, error) {
	idx := lowerBound(entities, nameOf, key)
	if idx < 0 || nameOf(entities[idx]) != key {
		return 0, fmt.Errorf("search for %q: %w", key, ErrNameMissing)
	}
	return idx, nil
}

// SearchByNameIfPresent is the non-strict form of SearchByName: it returns
// -1 when the key is absent. Callers must treat -1 as a normal branch.
func SearchByNameIfPresent[T any](entities []T, nameOf func(T) string, key string) int {
	idx := lowerBound(entities, nameOf, key)
	if idx < 0 || nameOf(entities[idx]) != key {
		return -1
	}
	return idx
}

// lowerBound returns the smallest index whose name is >= key, or -1 for an
// empty list. With duplicate adjacent names this lands on the first of the
// run.
func lowerBound[T any](entities []T, nameOf func(T) string, key string) int {
	if len(entities) == 0 {
		return -1
	}

	lo, hi := 0, len(entities)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if strings.Compare(nameOf(entities[mid]), key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
