package wordtree

import (
	"iter"
	"slices"
)

// KeyPath is a leaf holder reached from the top of the tree.
type KeyPath struct {
	Path  []string `json:"path" yaml:"path"`
	Words []string `json:"words" yaml:"words"`
}

type frame struct {
	node *Node
	path []string
}

// Collect yields every path from n to a leaf holder, depth first, children in
// declaration order. The yielded slices are owned by the caller. Iterating
// again walks the tree from scratch.
func Collect(n *Node) iter.Seq[KeyPath] {
	return func(yield func(KeyPath) bool) {
		if n == nil {
			return
		}
		stack := []frame{{node: n}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if top.node.kind == Leaf {
				kp := KeyPath{Path: slices.Clone(top.path), Words: slices.Clone(top.node.words)}
				if kp.Path == nil {
					kp.Path = []string{}
				}
				if !yield(kp) {
					return
				}
				continue
			}

			// Reverse push keeps declaration order on pop.
			for i := len(top.node.keys) - 1; i >= 0; i-- {
				key := top.node.keys[i]
				path := make([]string, len(top.path), len(top.path)+1)
				copy(path, top.path)
				stack = append(stack, frame{node: top.node.children[key], path: append(path, key)})
			}
		}
	}
}

// Paths returns Collect's result as a slice.
func Paths(n *Node) []KeyPath {
	var out []KeyPath
	for kp := range Collect(n) {
		out = append(out, kp)
	}
	return out
}
