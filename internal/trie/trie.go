// Package trie implements a byte-wise prefix tree used as a membership
// index when deduplicating merged history lists.
package trie

// Trie is a set of strings stored as a prefix tree.
// The zero value is not usable; call [New].
type Trie struct {
	root *node
}

type node struct {
	children map[byte]*node
	terminal bool
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Put adds s to the set. Adding an existing string is a no-op.
func (t *Trie) Put(s string) {
	cur := t.root
	for i := 0; i < len(s); i++ {
		c := s[i]

		next, ok := cur.children[c]
		if !ok {
			if cur.children == nil {
				cur.children = map[byte]*node{}
			}

			next = &node{}
			cur.children[c] = next
		}

		cur = next
	}

	cur.terminal = true
}

// Contains reports whether s was added to the set.
func (t *Trie) Contains(s string) bool {
	cur := t.root
	for i := 0; i < len(s); i++ {
		next, ok := cur.children[s[i]]
		if !ok {
			return false
		}

		cur = next
	}

	return cur.terminal
}
