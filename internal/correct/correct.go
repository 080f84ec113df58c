// Package correct asks a language model for spelling fixes on every word
// list of a category tree and applies them in place. It also translates
// category names.
package correct

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

// ErrWordNotFound is returned by Apply when a replacement names a word the
// leaf holder does not contain.
var ErrWordNotFound = errors.New("word not found")

// Replacement swaps one word for another.
type Replacement struct {
	Original  string `json:"original" yaml:"original"`
	Corrected string `json:"corrected" yaml:"corrected"`
}

// Instruction lists the replacements for the leaf holder at Path.
type Instruction struct {
	Path         []string      `json:"path" yaml:"path"`
	Replacements []Replacement `json:"replacements" yaml:"replacements"`
}

// Corrector finds and applies corrections.
type Corrector struct {
	completer llm.Completer
	model     string
	logger    *slog.Logger
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithModel selects the model used for corrections.
func WithModel(model string) Option {
	return func(c *Corrector) {
		if strings.TrimSpace(model) != "" {
			c.model = strings.TrimSpace(model)
		}
	}
}

// WithLogger sets the logger for recoverable failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Corrector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCorrector creates a Corrector backed by completer.
func NewCorrector(completer llm.Completer, opts ...Option) *Corrector {
	c := &Corrector{
		completer: completer,
		model:     llm.DefaultModel,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correct finds corrections for every word list of tree and applies them.
// The tree is modified in place and returned.
func (c *Corrector) Correct(ctx context.Context, tree *wordtree.Node, language lang.Language) (*wordtree.Node, error) {
	instructions, err := c.FindCorrections(ctx, tree, language)
	if err != nil {
		return nil, err
	}
	return Apply(tree, instructions)
}

// FindCorrections returns one instruction per leaf holder, in traversal
// order. A model answer that cannot be parsed, or a failed call, yields an
// instruction without replacements; only configuration failures and
// cancellation abort.
func (c *Corrector) FindCorrections(ctx context.Context, tree *wordtree.Node, language lang.Language) ([]Instruction, error) {
	var instructions []Instruction
	for kp := range wordtree.Collect(tree) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		replacements, err := c.findForPath(ctx, kp, language)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, Instruction{Path: kp.Path, Replacements: replacements})
	}
	return instructions, nil
}

func (c *Corrector) findForPath(ctx context.Context, kp wordtree.KeyPath, language lang.Language) ([]Replacement, error) {
	categories := categoryNames(kp.Path)
	logger := c.logger.With("categories", strings.Join(categories, " > "))

	system, user, err := CorrectionPrompts(language, categories, kp.Words)
	if err != nil {
		return nil, err
	}

	resp, err := c.completer.Complete(ctx, llm.Request{SystemPrompt: system, UserPrompt: user, Model: c.model})
	if err != nil {
		if isFatal(ctx, err) {
			return nil, err
		}
		logger.Warn("correction request failed, keeping words as they are", "error", err)
		return []Replacement{}, nil
	}

	replacements, err := ParseReplacements(resp.Content)
	if err != nil {
		logger.Warn("could not parse correction response, keeping words as they are",
			"error", err,
			"response", resp.Content,
		)
		return []Replacement{}, nil
	}

	replacements = c.keepApplicable(logger, replacements, kp.Words)
	if len(replacements) > 0 {
		logger.Debug("corrections found", "count", len(replacements), "cached", resp.Cached)
	}
	return replacements, nil
}

// keepApplicable drops pairs that cannot apply to words: unknown or repeated
// originals and no-op pairs.
func (c *Corrector) keepApplicable(logger *slog.Logger, replacements []Replacement, words []string) []Replacement {
	seen := make(map[string]bool, len(replacements))
	out := make([]Replacement, 0, len(replacements))
	for _, r := range replacements {
		switch {
		case r.Original == r.Corrected:
			continue
		case seen[r.Original]:
			logger.Debug("dropping repeated correction", "original", r.Original)
			continue
		case !slices.Contains(words, r.Original):
			logger.Warn("model corrected a word that is not in the list", "original", r.Original, "corrected", r.Corrected)
			continue
		}
		seen[r.Original] = true
		out = append(out, r)
	}
	return out
}

func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, llm.ErrUnavailable) {
		return true
	}
	var authErr llm.AuthenticationError
	return errors.As(err, &authErr)
}

// categoryNames strips the synthetic root from a path.
func categoryNames(path []string) []string {
	if len(path) > 0 && path[0] == wordtree.RootKey {
		return slices.Clone(path[1:])
	}
	return slices.Clone(path)
}

// Apply replaces words in tree according to instructions, one instruction at
// a time. Each leaf holder is rewritten only when all of its replacements
// apply; the first failing instruction stops the run.
func Apply(tree *wordtree.Node, instructions []Instruction) (*wordtree.Node, error) {
	for _, in := range instructions {
		if len(in.Replacements) == 0 {
			continue
		}
		node, err := tree.Lookup(in.Path...)
		if err != nil {
			return nil, err
		}
		if !node.IsLeaf() {
			return nil, fmt.Errorf("%w: %v is not a word list", wordtree.ErrKeyNotFound, in.Path)
		}

		words := make(map[string]bool, node.Len())
		for _, w := range node.Words() {
			words[w] = true
		}
		for _, r := range in.Replacements {
			if !words[r.Original] {
				return nil, fmt.Errorf("%w: %q at %v", ErrWordNotFound, r.Original, in.Path)
			}
			delete(words, r.Original)
			words[r.Corrected] = true
		}

		updated := make([]string, 0, len(words))
		for w := range words {
			updated = append(updated, w)
		}
		node.SetWords(updated)
	}
	return tree, nil
}
