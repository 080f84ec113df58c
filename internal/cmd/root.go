package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/perchance-cli/internal/config"
	"github.com/salmonumbrella/perchance-cli/internal/log"
	"github.com/salmonumbrella/perchance-cli/internal/output"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(fmt.Sprintf("perchance version %s (commit: %s, built: %s)\n", version, commit, date))
}

// Global flags
var (
	outputFmt   string
	outputType  output.Format
	configFile  string
	queryExpr   string
	errorFmt    string
	verbose     bool
	cacheDirArg string
)

var rootCmd = &cobra.Command{
	Use:   "perchance",
	Short: "Turn markdown thesauri into perchance generators",
	Long: `perchance converts markdown word lists into a category tree,
optionally fixes misspelled words with a language model, and writes the
result as YAML or as perchance.org list syntax.

A thesaurus is a markdown file where headings are categories and the
lines under the deepest heading are words:

  # Characters
  ## Age
  ### Adjective
  baby
  old

Environment Variables:
  PERCHANCE_API_KEY           API key for the completion service (falls back to OPENAI_API_KEY)
  PERCHANCE_BASE_URL          OpenAI-compatible base URL
  PERCHANCE_KEYRING_BACKEND   auto, keychain, secret-service or file
  PERCHANCE_KEYRING_PASSWORD  password for the file keyring backend`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}

		skipConfigLoad := cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config")
		cfg := &config.Config{}
		if !skipConfigLoad {
			loaded, err := loadConfigFromFlag()
			if err != nil {
				return formatConfigLoadError(err)
			}
			cfg = loaded
		}

		// Output format selection: --output > config > non-TTY json > text
		formatStr := outputFmt
		if !flagChanged(cmd, "output") {
			if strings.TrimSpace(cfg.OutputFormat) != "" {
				formatStr = strings.TrimSpace(cfg.OutputFormat)
			} else if !isTerminal(cmd.OutOrStdout()) && queryExpr != "" {
				formatStr = string(output.FormatJSON)
			}
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		logger := log.New(cmd.ErrOrStderr(), verbose)

		ctx := cmd.Context()
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = withConfig(ctx, cfg)
		ctx = log.WithLogger(ctx, logger)
		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = WithErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)

		logger.Debug("configuration loaded", "config", configFile, "output", outputType)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		ctx := rootCmd.Context()
		if cmd != nil && cmd.Context() != nil {
			ctx = cmd.Context()
		}
		printCommandError(ctx, err)
		return err
	}
	return nil
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("perchance version %s (commit: %s, built: %s)\n", version, commit, date))

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format for listings (text|json|ndjson|table|yaml|markdown)")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter structured output")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages to stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/perchance/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cacheDirArg, "cache-dir", "", "Directory of the model response cache (default: $XDG_CACHE_HOME/perchance)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
