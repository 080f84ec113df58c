package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/log"
	"github.com/salmonumbrella/perchance-cli/internal/render"
	"github.com/salmonumbrella/perchance-cli/internal/thesaurus"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

const stdinSource = "-"

// filesFailedError reports the inputs that could not be processed.
type filesFailedError struct {
	Files []string
}

func (e *filesFailedError) Error() string {
	return fmt.Sprintf("%d input file(s) failed: %s", len(e.Files), strings.Join(e.Files, ", "))
}

// readInputSource reads content from a file path or stdin when source is "-".
func readInputSource(source string, stdin io.Reader) (string, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", fmt.Errorf("empty input source")
	}

	var r io.Reader
	if trimmed == stdinSource {
		if stdin != nil {
			r = stdin
		} else {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(trimmed)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", trimmed, err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// isMarkdownSource reports whether source is parsed as a markdown thesaurus.
// Standard input is always markdown.
func isMarkdownSource(source string) bool {
	if source == stdinSource {
		return true
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// loadMarkdown parses source as a markdown thesaurus whatever its extension.
func loadMarkdown(ctx context.Context, source string) (*wordtree.Node, error) {
	text, err := readInputSource(source, stdinFromContext(ctx))
	if err != nil {
		return nil, err
	}
	logger := log.FromContext(ctx).With("file", source)
	return thesaurus.FromMarkdown(text, thesaurus.WithLogger(logger)), nil
}

// loadTree reads source as a markdown thesaurus or, for other extensions, as
// a YAML category tree.
func loadTree(ctx context.Context, source string) (*wordtree.Node, error) {
	if isMarkdownSource(source) {
		return loadMarkdown(ctx, source)
	}

	text, err := readInputSource(source, stdinFromContext(ctx))
	if err != nil {
		return nil, err
	}
	tree, err := wordtree.ParseYAML([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}
	if _, err := tree.Get(wordtree.RootKey); err != nil {
		return nil, fmt.Errorf("decoding %s: %w: missing top-level %q key", source, wordtree.ErrMalformedTree, wordtree.RootKey)
	}
	return tree, nil
}

// resultWriter sends rendered trees to stdout or to one file per input.
type resultWriter struct {
	outDir  string
	format  render.Format
	written int
}

func (w *resultWriter) outputPath(source string) string {
	base := "stdin"
	if source != stdinSource {
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return filepath.Join(w.outDir, base+w.format.Extension())
}

func (w *resultWriter) Write(ctx context.Context, source string, tree *wordtree.Node) error {
	if w.outDir == "" {
		out := bufio.NewWriter(stdoutFromContext(ctx))
		if w.written > 0 {
			sep := "\n"
			if w.format == render.FormatYAML {
				sep = "---\n"
			}
			if _, err := out.WriteString(sep); err != nil {
				return err
			}
		}
		if err := render.Render(out, tree, w.format); err != nil {
			return err
		}
		w.written++
		return out.Flush()
	}

	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := w.outputPath(source)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render.Render(file, tree, w.format); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.written++
	log.FromContext(ctx).Info("wrote output", "file", source, "path", path)
	return nil
}

// forEachFile runs fn on every source. A failing file is reported on stderr
// and the loop moves on; errors that would fail every file stop it.
func forEachFile(ctx context.Context, sources []string, fn func(ctx context.Context, source string) error) error {
	var failed []string
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, source); err != nil {
			if abortsRun(err) {
				return err
			}
			fmt.Fprintf(stderrFromContext(ctx), "Error: %s: %v\n", source, err)
			failed = append(failed, source)
		}
	}
	if len(failed) > 0 {
		return &filesFailedError{Files: failed}
	}
	return nil
}

func abortsRun(err error) bool {
	var authErr llm.AuthenticationError
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, llm.ErrUnavailable) ||
		errors.As(err, &authErr)
}
