package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/perchance-cli/internal/output"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

var listCategoriesCmd = &cobra.Command{
	Use:   "list-categories <file>",
	Short: "List the category paths of a thesaurus",
	Long: `List every category that holds words, in document order.

Structured formats carry the full path (starting at root) and the words,
so --query can reshape them.

Examples:
  perchance list-categories thesaurus.md
  perchance list-categories -o table thesaurus.yml
  perchance list-categories -o json --query '.[] | select(.words | length > 10) | .path' thesaurus.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tree, err := loadTree(ctx, args[0])
		if err != nil {
			return err
		}
		paths := wordtree.Paths(tree)
		if paths == nil {
			paths = []wordtree.KeyPath{}
		}
		return printStructured(cmd, categoryList(paths))
	},
}

func init() {
	rootCmd.AddCommand(listCategoriesCmd)
}

// categoryList renders leaf paths for the output printer.
type categoryList []wordtree.KeyPath

func displayPath(path []string) string {
	if len(path) > 0 && path[0] == wordtree.RootKey {
		path = path[1:]
	}
	return strings.Join(path, " > ")
}

func (l categoryList) WriteText(w io.Writer) error {
	for _, kp := range l {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", displayPath(kp.Path), len(kp.Words)); err != nil {
			return err
		}
	}
	return nil
}

func (l categoryList) Table() output.Table {
	table := output.Table{Headers: []string{"category", "depth", "words"}}
	for _, kp := range l {
		depth := len(kp.Path)
		if depth > 0 && kp.Path[0] == wordtree.RootKey {
			depth--
		}
		table.Rows = append(table.Rows, []string{displayPath(kp.Path), strconv.Itoa(depth), strconv.Itoa(len(kp.Words))})
	}
	return table
}
