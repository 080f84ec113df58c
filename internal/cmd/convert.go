package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/perchance-cli/internal/correct"
	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/log"
	"github.com/salmonumbrella/perchance-cli/internal/render"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

var markdownToYMLCmd = &cobra.Command{
	Use:   "markdown-to-yml <file>...",
	Short: "Convert markdown thesauri to YAML category trees",
	Long: `Parse each markdown thesaurus and write its category tree as YAML.

Headings become categories and the lines under the deepest heading become
the sorted, de-duplicated word list. Use - to read standard input.

Examples:
  perchance markdown-to-yml thesaurus.md
  perchance markdown-to-yml --out-dir build/ a.md b.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMarkdownToYML,
}

var convertCmd = &cobra.Command{
	Use:     "convert-to-perchance <file>...",
	Aliases: []string{"convert-to-perchance-format"},
	Short:   "Write thesauri in perchance list syntax",
	Long: `Convert markdown thesauri or YAML category trees to perchance.org lists.

Each category becomes a list named after the lowercased title, with a
name= property holding the original title. With --translate-from and
--translate-to, category titles are translated by the language model first;
words are left untouched.

Examples:
  perchance convert-to-perchance thesaurus.yml
  perchance convert-to-perchance --translate-from French --translate-to English thesaurus.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

var (
	markdownOutDir string

	convertOutDir  string
	convertFrom    string
	convertTo      string
	convertModel   string
	convertNoCache bool
)

func init() {
	markdownToYMLCmd.Flags().StringVar(&markdownOutDir, "out-dir", "", "Write <name>.yml files here instead of stdout")

	convertCmd.Flags().StringVar(&convertOutDir, "out-dir", "", "Write <name>.txt files here instead of stdout")
	convertCmd.Flags().StringVar(&convertFrom, "translate-from", "", "Language of the category titles")
	convertCmd.Flags().StringVar(&convertTo, "translate-to", "", "Language to translate category titles into")
	convertCmd.Flags().StringVar(&convertModel, "model", "", "Model used for translation (default: config translate_model or "+llm.DefaultTranslateModel+")")
	convertCmd.Flags().BoolVar(&convertNoCache, "no-cache", false, "Do not read or write the response cache")

	rootCmd.AddCommand(markdownToYMLCmd)
	rootCmd.AddCommand(convertCmd)
}

func runMarkdownToYML(cmd *cobra.Command, args []string) error {
	w := &resultWriter{outDir: markdownOutDir, format: render.FormatYAML}
	return forEachFile(cmd.Context(), args, func(ctx context.Context, source string) error {
		tree, err := loadMarkdown(ctx, source)
		if err != nil {
			return err
		}
		return w.Write(ctx, source, tree)
	})
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	translate, err := newTitleTranslation(ctx)
	if err != nil {
		return err
	}
	if translate != nil {
		defer translate.Close()
	}

	w := &resultWriter{outDir: convertOutDir, format: render.FormatPerchance}
	return forEachFile(ctx, args, func(ctx context.Context, source string) error {
		tree, err := loadTree(ctx, source)
		if err != nil {
			return err
		}
		if translate != nil {
			if tree, err = translate.Tree(ctx, tree); err != nil {
				return err
			}
		}
		return w.Write(ctx, source, tree)
	})
}

// titleTranslation translates category titles between two languages.
type titleTranslation struct {
	translator *correct.Translator
	from, to   lang.Language
	service    completionService
}

// newTitleTranslation returns nil when no translation was requested.
func newTitleTranslation(ctx context.Context) (*titleTranslation, error) {
	from, to := strings.TrimSpace(convertFrom), strings.TrimSpace(convertTo)
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("--translate-from and --translate-to must be used together")
	}

	fromLang, err := lang.Resolve(from)
	if err != nil {
		return nil, err
	}
	toLang, err := lang.Resolve(to)
	if err != nil {
		return nil, err
	}

	svc, err := openCompletionService(ctx, convertNoCache)
	if err != nil {
		return nil, err
	}

	cfg := configFromContext(ctx)
	model := pickModel(convertModel, cfg.TranslateModel, llm.DefaultTranslateModel)
	tr := correct.NewTranslator(svc,
		correct.WithModel(model),
		correct.WithLogger(log.FromContext(ctx)),
	)
	log.FromContext(ctx).Debug("translating titles", "from", fromLang.Name, "to", toLang.Name, "model", model)
	return &titleTranslation{translator: tr, from: fromLang, to: toLang, service: svc}, nil
}

func (t *titleTranslation) Tree(ctx context.Context, tree *wordtree.Node) (*wordtree.Node, error) {
	return t.translator.TranslateTree(ctx, tree, t.from, t.to)
}

func (t *titleTranslation) Close() error {
	return t.service.Close()
}
