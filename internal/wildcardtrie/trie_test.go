package wildcardtrie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrie(t *testing.T) *Trie[int] {
	t.Helper()
	tr, err := New[int]("/", "+", "#")
	require.NoError(t, err)
	return tr
}

func TestNewRejectsInvalidTokens(t *testing.T) {
	cases := []struct {
		name           string
		sep, sgl, mult string
	}{
		{"empty separator", "", "+", "#"},
		{"empty single", "/", "", "#"},
		{"empty multi", "/", "+", ""},
		{"sep equals single", "/", "/", "#"},
		{"single equals multi", "/", "+", "+"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New[int](c.sep, c.sgl, c.mult)
			assert.Error(t, err)
		})
	}
}

func TestExactInsertFindRemove(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/b/c", 1)

	assert.Equal(t, map[string]int{"a/b/c": 1}, tr.Find("a/b/c"))
	assert.Empty(t, tr.Find("a/b/d"))

	require.True(t, tr.Remove("a/b/c"))
	assert.False(t, tr.Remove("a/b/c"), "second Remove should fail")
	assert.True(t, tr.Empty(), "trie should be empty after removing its only entry")
}

func TestRemoveNonLeafFails(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/b/c", 1)

	assert.False(t, tr.Remove("a/b"), "a/b is not a leaf")
	assert.False(t, tr.Remove("a"), "a is not a leaf")
}

func TestRemovePrunesRedundantAncestors(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/b/c", 1)
	tr.Insert("a/x", 2)

	require.True(t, tr.Remove("a/b/c"))

	// a/x must still resolve; a/b's now-dangling chain must be pruned,
	// not merely unmarked.
	assert.Equal(t, map[string]int{"a/x": 2}, tr.Find("a/x"))
	assert.Empty(t, tr.Find("a/b/c"))

	count := 0
	tr.ForEach(func(string, int) { count++ })
	assert.Equal(t, 1, count, "ForEach should visit exactly one leaf")
}

func TestSingleLevelWildcard(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/+/b", 1)
	tr.Insert("a/x/b", 2)

	assert.Equal(t, map[string]int{"a/+/b": 1, "a/x/b": 2}, tr.Find("a/x/b"))

	// a/+/b must not match a/x/y/b: + spans exactly one level.
	assert.Empty(t, tr.Find("a/x/y/b"))
}

func TestMultiLevelWildcard(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/#", 1)

	for _, key := range []string{"a/x", "a/x/y"} {
		assert.Equal(t, map[string]int{"a/#": 1}, tr.Find(key), "Find(%s)", key)
	}

	// a/# does not match its own parent level a.
	assert.Empty(t, tr.Find("a"))
	assert.Empty(t, tr.Find("b"))
}

func TestMultiLevelWildcardDoesNotShadowExactMatch(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/#", 1)
	tr.Insert("a/x", 2)

	assert.Equal(t, map[string]int{"a/#": 1, "a/x": 2}, tr.Find("a/x"))
}

func TestUpsertMutatesInPlace(t *testing.T) {
	tr := newTestTrie(t)
	v := tr.Upsert("a/b")
	*v = 7

	assert.Equal(t, map[string]int{"a/b": 7}, tr.Find("a/b"))
}

func TestClear(t *testing.T) {
	tr := newTestTrie(t)
	tr.Insert("a/b", 1)
	tr.Insert("c", 2)
	tr.Clear()

	assert.True(t, tr.Empty(), "trie should be empty after Clear")
	assert.Empty(t, tr.Find("a/b"))
}
