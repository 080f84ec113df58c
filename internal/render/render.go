// Package render writes category trees as YAML or as perchance lists.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

// Format selects the output encoding.
type Format string

const (
	// FormatYAML is the lossless tree encoding.
	FormatYAML Format = "yaml"
	// FormatPerchance is the indented list format read by perchance.org.
	FormatPerchance Format = "perchance"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatYAML, "yml", "":
		return FormatYAML, nil
	case FormatPerchance:
		return FormatPerchance, nil
	default:
		return "", fmt.Errorf("invalid format %q (expected yaml|perchance)", s)
	}
}

// Extension returns the file extension used when writing f to disk.
func (f Format) Extension() string {
	if f == FormatPerchance {
		return ".txt"
	}
	return ".yml"
}

// Render writes tree to w in format f.
func Render(w io.Writer, tree *wordtree.Node, f Format) error {
	switch f {
	case FormatYAML:
		return YAML(w, tree)
	case FormatPerchance:
		return Perchance(w, tree)
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

// YAML writes the tree with two-space indentation and unescaped UTF-8.
func YAML(w io.Writer, tree *wordtree.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

const indentUnit = "  "

// Perchance writes the categories below the root as perchance lists. Each
// category becomes its key name followed by a name= property, and word lists
// become one item per line.
func Perchance(w io.Writer, tree *wordtree.Node) error {
	bw := bufio.NewWriter(w)
	start := tree
	if root, err := tree.Get(wordtree.RootKey); err == nil {
		start = root
	}
	writePerchance(bw, start, 0)
	return bw.Flush()
}

func writePerchance(w *bufio.Writer, n *wordtree.Node, level int) {
	sp := strings.Repeat(indentUnit, level)
	if n.IsLeaf() {
		for _, word := range n.Words() {
			fmt.Fprintf(w, "%s%s\n", sp, word)
		}
		return
	}
	for _, key := range n.Keys() {
		child, _ := n.Get(key)
		fmt.Fprintf(w, "%s%s\n", sp, KeyName(key))
		fmt.Fprintf(w, "%s%sname=%s\n", sp, indentUnit, lang.Lower(key))
		writePerchance(w, child, level+1)
	}
}

// KeyName turns a category title into a perchance identifier: lowercase,
// with commas and runs of spaces collapsed into single underscores.
func KeyName(title string) string {
	s := strings.ReplaceAll(lang.Lower(title), ",", " ")
	return strings.Join(strings.Fields(s), "_")
}
