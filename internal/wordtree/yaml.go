package wordtree

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the tree with keys in declaration order.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.yamlNode(), nil
}

func (n *Node) yamlNode() *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if n.kind == Leaf {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, w := range n.words {
			seq.Content = append(seq.Content, stringNode(w))
		}
		m.Content = append(m.Content, stringNode(LeafKey), seq)
		return m
	}
	for _, key := range n.keys {
		m.Content = append(m.Content, stringNode(key), n.children[key].yamlNode())
	}
	return m
}

func stringNode(s string) *yaml.Node {
	var v yaml.Node
	v.SetString(s)
	return &v
}

// UnmarshalYAML decodes a mapping tree. A mapping whose only key is "words"
// becomes a leaf holder; "words" next to other keys is rejected.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	decoded, err := fromYAML(value, nil)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// ParseYAML decodes a YAML document into a tree.
func ParseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if doc.Kind == 0 {
		return NewBranch(), nil
	}
	return fromYAML(&doc, nil)
}

func fromYAML(value *yaml.Node, path []string) (*Node, error) {
	switch value.Kind {
	case yaml.DocumentNode:
		if len(value.Content) == 0 {
			return NewBranch(), nil
		}
		return fromYAML(value.Content[0], path)
	case yaml.AliasNode:
		return fromYAML(value.Alias, path)
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return NewBranch(), nil
		}
		return nil, fmt.Errorf("%w: scalar %q at %v, expected a mapping", ErrMalformedTree, value.Value, path)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("%w: expected a mapping at %v", ErrMalformedTree, path)
	}

	if len(value.Content) == 2 && value.Content[0].Value == LeafKey {
		words, err := wordsFromYAML(value.Content[1], path)
		if err != nil {
			return nil, err
		}
		return NewLeaf(words), nil
	}

	node := NewBranch()
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if key == LeafKey {
			return nil, fmt.Errorf("%w: %q mixed with categories at %v", ErrMalformedTree, LeafKey, path)
		}
		child, err := fromYAML(value.Content[i+1], append(path[:len(path):len(path)], key))
		if err != nil {
			return nil, err
		}
		node.Set(key, child)
	}
	return node, nil
}

func wordsFromYAML(value *yaml.Node, path []string) ([]string, error) {
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %q must be a list at %v", ErrMalformedTree, LeafKey, path)
	}
	words := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		if item.Kind == yaml.AliasNode {
			item = item.Alias
		}
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar word at %v", ErrMalformedTree, path)
		}
		words = append(words, item.Value)
	}
	return words, nil
}
