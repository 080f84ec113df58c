package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/perchance-cli/internal/correct"
	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/log"
	"github.com/salmonumbrella/perchance-cli/internal/render"
)

var correctWordsCmd = &cobra.Command{
	Use:   "correct-words <language> <file>...",
	Short: "Fix misspelled words with a language model",
	Long: `Ask the language model to correct the words of every category and
write the corrected tree.

The language is an English name (French) or a code (fr, fra). Inputs are
markdown thesauri (.md) or YAML category trees. A category whose answer
cannot be understood is left unchanged and logged.

Examples:
  perchance correct-words French thesaurus.md
  perchance correct-words --format perchance --out-dir build/ fr *.yml`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCorrectWords,
}

var (
	correctModel   string
	correctNoCache bool
	correctOutDir  string
	correctFormat  string
)

func init() {
	correctWordsCmd.Flags().StringVar(&correctModel, "model", "", "Model used for corrections (default: config model or "+llm.DefaultModel+")")
	correctWordsCmd.Flags().BoolVar(&correctNoCache, "no-cache", false, "Do not read or write the response cache")
	correctWordsCmd.Flags().StringVar(&correctOutDir, "out-dir", "", "Write results here instead of stdout")
	correctWordsCmd.Flags().StringVar(&correctFormat, "format", "yaml", "Result format (yaml|perchance)")

	rootCmd.AddCommand(correctWordsCmd)
}

func runCorrectWords(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	language, err := lang.Resolve(args[0])
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(correctFormat)
	if err != nil {
		return err
	}

	svc, err := openCompletionService(ctx, correctNoCache)
	if err != nil {
		return err
	}
	defer svc.Close()

	model := pickModel(correctModel, configFromContext(ctx).Model, llm.DefaultModel)
	corrector := correct.NewCorrector(svc, correct.WithModel(model), correct.WithLogger(logger))
	logger.Debug("correcting words", "language", language.Name, "model", model)

	w := &resultWriter{outDir: correctOutDir, format: format}
	return forEachFile(ctx, args[1:], func(ctx context.Context, source string) error {
		tree, err := loadTree(ctx, source)
		if err != nil {
			return err
		}
		if _, err := corrector.Correct(ctx, tree, language); err != nil {
			return err
		}
		return w.Write(ctx, source, tree)
	})
}
