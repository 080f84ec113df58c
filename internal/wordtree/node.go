// Package wordtree holds the category tree of a thesaurus: branches keyed by
// category name and leaf holders carrying the sorted word list.
package wordtree

import (
	"errors"
	"fmt"
	"slices"
)

// LeafKey is the reserved key under which a leaf holder stores its words
// when the tree is serialized.
const LeafKey = "words"

// RootKey is the title of the synthetic top-level category.
const RootKey = "root"

var (
	// ErrKeyNotFound is returned when navigating to an absent category.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMalformedTree is returned when a decoded document mixes the words
	// collection with sub-categories, or uses a value type the tree cannot hold.
	ErrMalformedTree = errors.New("malformed category tree")
)

// Kind tells branches and leaf holders apart.
type Kind int

const (
	// Branch nodes only hold sub-categories.
	Branch Kind = iota
	// Leaf nodes only hold words.
	Leaf
)

func (k Kind) String() string {
	switch k {
	case Branch:
		return "branch"
	case Leaf:
		return "leaf"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one category of the tree. Navigation returns pointers into the
// same structure, so mutations are visible to every holder of the root.
type Node struct {
	kind     Kind
	keys     []string
	children map[string]*Node
	words    []string
}

// NewBranch returns an empty branch node.
func NewBranch() *Node {
	return &Node{kind: Branch, children: make(map[string]*Node)}
}

// NewLeaf returns a leaf holder with the given words, sorted and deduplicated.
func NewLeaf(words []string) *Node {
	return &Node{kind: Leaf, words: normalizeWords(words)}
}

// NewDocument wraps a category under the synthetic root key.
func NewDocument(root *Node) *Node {
	doc := NewBranch()
	doc.Set(RootKey, root)
	return doc
}

// Kind reports whether n is a branch or a leaf holder.
func (n *Node) Kind() Kind { return n.kind }

// IsLeaf reports whether n holds words.
func (n *Node) IsLeaf() bool { return n.kind == Leaf }

// Len returns the number of children of a branch or words of a leaf.
func (n *Node) Len() int {
	if n.kind == Leaf {
		return len(n.words)
	}
	return len(n.keys)
}

// Keys returns the child keys in declaration order.
func (n *Node) Keys() []string {
	return slices.Clone(n.keys)
}

// Get returns the child stored under key.
func (n *Node) Get(key string) (*Node, error) {
	if n.kind == Leaf {
		return nil, fmt.Errorf("%w: %q (leaf holder has no categories)", ErrKeyNotFound, key)
	}
	child, ok := n.children[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return child, nil
}

// Lookup follows path from n, one Get per segment.
func (n *Node) Lookup(path ...string) (*Node, error) {
	cur := n
	for i, key := range path {
		next, err := cur.Get(key)
		if err != nil {
			return nil, fmt.Errorf("at %v: %w", path[:i+1], err)
		}
		cur = next
	}
	return cur, nil
}

// Set stores child under key. A new key is appended after the existing ones;
// an existing key keeps its position and has its value replaced. Calling Set
// on a leaf holder turns it into a branch.
func (n *Node) Set(key string, child *Node) {
	if n.kind == Leaf {
		n.kind = Branch
		n.words = nil
		n.children = make(map[string]*Node)
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// Words returns a copy of the words of a leaf holder, nil for a branch.
func (n *Node) Words() []string {
	if n.kind != Leaf {
		return nil
	}
	return slices.Clone(n.words)
}

// SetWords replaces the node's content with a sorted, deduplicated word list.
func (n *Node) SetWords(words []string) {
	n.kind = Leaf
	n.keys = nil
	n.children = nil
	n.words = normalizeWords(words)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n.kind == Leaf {
		return &Node{kind: Leaf, words: slices.Clone(n.words)}
	}
	c := NewBranch()
	for _, key := range n.keys {
		c.Set(key, n.children[key].Clone())
	}
	return c
}

// Equal reports whether two trees have the same shape, keys and words.
// Key order is significant.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	if n.kind == Leaf {
		return slices.Equal(n.words, o.words)
	}
	if !slices.Equal(n.keys, o.keys) {
		return false
	}
	for _, key := range n.keys {
		if !n.children[key].Equal(o.children[key]) {
			return false
		}
	}
	return true
}

// Extract returns the raw nested structure: map[string]any for branches and
// {"words": []string} for leaf holders.
func (n *Node) Extract() any {
	if n.kind == Leaf {
		return map[string]any{LeafKey: slices.Clone(n.words)}
	}
	out := make(map[string]any, len(n.keys))
	for _, key := range n.keys {
		out[key] = n.children[key].Extract()
	}
	return out
}

func normalizeWords(words []string) []string {
	out := slices.Clone(words)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
