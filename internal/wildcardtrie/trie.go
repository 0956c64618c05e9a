package wildcardtrie

import (
	"errors"
	"strings"
)

// node is an internal trie node. children is keyed by the literal level
// token (which may itself equal the configured wildcard tokens, in which
// case the node participates in wildcard matching).
type node[V any] struct {
	value      V
	children   map[string]*node[V]
	levelIndex int
	isLeaf     bool
}

func newNode[V any](levelIndex int) *node[V] {
	return &node[V]{children: make(map[string]*node[V]), levelIndex: levelIndex}
}

// Trie is a string-keyed trie with MQTT-style wildcard lookup, made for
// topic matching but reusable for any level-separated key space.
//
// Construction fails if the separator or either wildcard token is empty,
// or if any two of them collide.
type Trie[V any] struct {
	sep    string
	single string
	multi  string
	root   *node[V]
}

// New constructs a Trie with the given level separator, single-level
// wildcard token, and multi-level wildcard token. All three must be
// non-empty and pairwise distinct.
func New[V any](levelSeparator, singleLevelWildcard, multiLevelWildcard string) (*Trie[V], error) {
	if levelSeparator == "" || singleLevelWildcard == "" || multiLevelWildcard == "" {
		return nil, errors.New("wildcardtrie: separator or wildcard strings can't be empty")
	}
	if levelSeparator == singleLevelWildcard || levelSeparator == multiLevelWildcard ||
		singleLevelWildcard == multiLevelWildcard {
		return nil, errors.New("wildcardtrie: duplicate separator or wildcard strings")
	}

	return &Trie[V]{
		sep:    levelSeparator,
		single: singleLevelWildcard,
		multi:  multiLevelWildcard,
		root:   newNode[V](0),
	}, nil
}

func (t *Trie[V]) splitToLevels(key string) []string {
	return strings.Split(key, t.sep)
}

// Upsert returns a pointer to key's value, creating intermediate nodes and
// the leaf itself as needed. The returned pointer aliases the trie's
// internal storage and may be mutated in place.
func (t *Trie[V]) Upsert(key string) *V {
	levels := t.splitToLevels(key)
	cur := t.root

	for i, level := range levels {
		child, ok := cur.children[level]
		if !ok {
			child = newNode[V](i + 1)
			cur.children[level] = child
		}
		cur = child
	}

	cur.isLeaf = true
	return &cur.value
}

// Insert inserts or replaces the value stored at key.
func (t *Trie[V]) Insert(key string, value V) {
	*t.Upsert(key) = value
}

// Remove removes key from the trie. It only succeeds if key names a leaf;
// removing a non-leaf internal node fails. On success, redundant ancestor
// nodes (those left with zero children and no value of their own) are
// pruned as well.
func (t *Trie[V]) Remove(key string) bool {
	levels := t.splitToLevels(key)
	cur := t.root
	stack := make([]*node[V], 0, len(levels))

	for _, level := range levels {
		stack = append(stack, cur)
		child, ok := cur.children[level]
		if !ok {
			return false
		}
		cur = child
	}

	if !cur.isLeaf {
		return false
	}
	cur.isLeaf = false

	if len(cur.children) == 0 {
		// Delete all redundant ancestors. A single delete at the first
		// ancestor that's still meaningful (has its own value, has other
		// children, or is the root) orphans the whole chain of redundant
		// nodes below it.
		for i := len(stack) - 1; i >= 0; i-- {
			n := stack[i]
			if n.isLeaf || len(n.children) > 1 || n == t.root {
				delete(n.children, levels[i])
				break
			}
		}
	}

	return true
}

// Find performs a breadth-first match of the literal (wildcard-free) query
// key against patterns stored in the trie, returning every matching
// pattern and its value. At each level it descends into the child equal to
// the literal token, the single-level-wildcard child if present, and
// records an immediate match if a multi-level-wildcard child is present
// and is itself a leaf. Wildcard tokens appearing inside key are treated
// as ordinary literals.
func (t *Trie[V]) Find(key string) map[string]V {
	levels := t.splitToLevels(key)
	values := make(map[string]V)

	type queued struct {
		key  string
		node *node[V]
	}
	queue := []queued{{"", t.root}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		n := item.node

		if n.levelIndex == len(levels) && n.isLeaf {
			values[item.key] = n.value
			continue
		}
		if n.levelIndex >= len(levels) {
			continue
		}

		for childLevel, childNode := range n.children {
			childKey := childLevel
			if item.key != "" {
				childKey = item.key + t.sep + childLevel
			}

			switch {
			case childLevel == levels[n.levelIndex] || childLevel == t.single:
				queue = append(queue, queued{childKey, childNode})
			case childLevel == t.multi && childNode.isLeaf:
				values[childKey] = childNode.value
			}
		}
	}

	return values
}

// ForEach calls f on every leaf key/value pair in the trie. Iteration
// order is unspecified.
func (t *Trie[V]) ForEach(f func(key string, value V)) {
	type queued struct {
		key  string
		node *node[V]
	}
	queue := []queued{{"", t.root}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		n := item.node

		if n.isLeaf {
			f(item.key, n.value)
		}

		for childLevel, childNode := range n.children {
			childKey := childLevel
			if item.key != "" {
				childKey = item.key + t.sep + childLevel
			}
			queue = append(queue, queued{childKey, childNode})
		}
	}
}

// Empty reports whether the trie contains no entries.
func (t *Trie[V]) Empty() bool {
	return len(t.root.children) == 0
}

// Clear removes every entry from the trie.
func (t *Trie[V]) Clear() {
	t.root = newNode[V](0)
}
