package ordering

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct {
	id   int
	name string
}

func nameOf(n named) string { return n.name }

func TestSortByName_Empty(t *testing.T) {
	var entities []named
	SortByName(entities, nameOf)
	assert.Empty(t, entities)
}

func TestSortByName_Single(t *testing.T) {
	entities := []named{{id: 1, name: "only"}}
	SortByName(entities, nameOf)
	assert.Equal(t, "only", entities[0].name)
}

func TestSortByName_SortsLexicographically(t *testing.T) {
	entities := []named{
		{id: 1, name: "toString"},
		{id: 2, name: "Array"},
		{id: 3, name: "apply"},
		{id: 4, name: "Object"},
		{id: 5, name: "call"},
	}

	SortByName(entities, nameOf)

	got := make([]string, len(entities))
	for i, e := range entities {
		got[i] = e.name
	}
	// Code-point order: uppercase sorts before lowercase.
	assert.Equal(t, []string{"Array", "Object", "apply", "call", "toString"}, got)
}

func TestSortByName_DuplicateAdjacentNames(t *testing.T) {
	entities := []named{
		{id: 1, name: "b"},
		{id: 2, name: "a"},
		{id: 3, name: "b"},
		{id: 4, name: "a"},
	}

	SortByName(entities, nameOf)

	got := make([]string, len(entities))
	for i, e := range entities {
		got[i] = e.name
	}
	assert.Equal(t, []string{"a", "a", "b", "b"}, got)
}

func TestSortByName_LargeShuffledInput(t *testing.T) {
	// Exercise every gap in the sequence (largest gap is 701).
	const n = 2000

	rng := rand.New(rand.NewSource(42))
	entities := make([]named, n)
	want := make([]string, n)
	for i := range entities {
		name := randomName(rng)
		entities[i] = named{id: i, name: name}
		want[i] = name
	}
	sort.Strings(want)

	SortByName(entities, nameOf)

	for i, e := range entities {
		assert.Equal(t, want[i], e.name, "position %d", i)
	}
}

func TestSearchByName_FindsPresentKeys(t *testing.T) {
	entities := []named{
		{name: "c"}, {name: "a"}, {name: "e"}, {name: "b"}, {name: "d"},
	}
	SortByName(entities, nameOf)

	for want, key := range []string{"a", "b", "c", "d", "e"} {
		idx, err := SearchByName(entities, nameOf, key)
		require.NoError(t, err, "key %q", key)
		assert.Equal(t, want, idx, "key %q", key)
	}
}

func TestSearchByName_AbsentKeyIsError(t *testing.T) {
	entities := []named{{name: "a"}, {name: "c"}}
	SortByName(entities, nameOf)

	_, err := SearchByName(entities, nameOf, "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNameMissing)
}

func TestSearchByName_EmptyListIsError(t *testing.T) {
	_, err := SearchByName(nil, nameOf, "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNameMissing)
}

func TestSearchByNameIfPresent_AbsentKeyReturnsMinusOne(t *testing.T) {
	entities := []named{{name: "a"}, {name: "c"}}
	SortByName(entities, nameOf)

	assert.Equal(t, -1, SearchByNameIfPresent(entities, nameOf, "b"))
	assert.Equal(t, -1, SearchByNameIfPresent(entities, nameOf, "zzz"))
	assert.Equal(t, -1, SearchByNameIfPresent(nil, nameOf, "a"))
}

func TestSearchByNameIfPresent_PresentKey(t *testing.T) {
	entities := []named{{name: "x"}, {name: "y"}, {name: "z"}}
	SortByName(entities, nameOf)

	assert.Equal(t, 1, SearchByNameIfPresent(entities, nameOf, "y"))
}

func TestSearchByName_DuplicateNamesReturnFirstOfRun(t *testing.T) {
	entities := []named{{name: "a"}, {name: "b"}, {name: "b"}, {name: "c"}}

	idx, err := SearchByName(entities, nameOf, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func randomName(rng *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$"
	n := 1 + rng.Intn(12)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}
