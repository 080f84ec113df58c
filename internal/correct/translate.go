package correct

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

// Translator renames categories into another language. Words are left
// untouched.
type Translator struct {
	completer llm.Completer
	model     string
	logger    *slog.Logger
	memo      map[string]string
}

// NewTranslator creates a Translator backed by completer. It accepts the
// same options as NewCorrector.
func NewTranslator(completer llm.Completer, opts ...Option) *Translator {
	// Reuse the Corrector options to keep one option type.
	c := &Corrector{model: llm.DefaultTranslateModel, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(c)
	}
	return &Translator{
		completer: completer,
		model:     c.model,
		logger:    c.logger,
		memo:      make(map[string]string),
	}
}

// TranslateTree returns a copy of tree with every category name except the
// synthetic root translated. Categories whose translations collide are merged.
func (t *Translator) TranslateTree(ctx context.Context, tree *wordtree.Node, from, to lang.Language) (*wordtree.Node, error) {
	return t.translateNode(ctx, tree, from, to)
}

func (t *Translator) translateNode(ctx context.Context, n *wordtree.Node, from, to lang.Language) (*wordtree.Node, error) {
	if n.IsLeaf() {
		return n.Clone(), nil
	}
	out := wordtree.NewBranch()
	for _, key := range n.Keys() {
		name := key
		if key != wordtree.RootKey {
			var err error
			if name, err = t.Translate(ctx, key, from, to); err != nil {
				return nil, err
			}
		}

		child, _ := n.Get(key)
		translatedChild, err := t.translateNode(ctx, child, from, to)
		if err != nil {
			return nil, err
		}

		if existing, err := out.Get(name); err == nil {
			merge(existing, translatedChild)
			continue
		}
		out.Set(name, translatedChild)
	}
	return out, nil
}

// Translate returns the best translation of word, or word itself when the
// model gives nothing usable.
func (t *Translator) Translate(ctx context.Context, word string, from, to lang.Language) (string, error) {
	if cached, ok := t.memo[word]; ok {
		return cached, nil
	}

	system, user, err := TranslationPrompts(from, to, word)
	if err != nil {
		return "", err
	}
	resp, err := t.completer.Complete(ctx, llm.Request{SystemPrompt: system, UserPrompt: user, Model: t.model})
	if err != nil {
		if isFatal(ctx, err) {
			return "", err
		}
		t.logger.Warn("translation request failed, keeping category name", "category", word, "error", err)
		return word, nil
	}

	candidates, err := parseTranslations(resp.Content)
	if err != nil {
		t.logger.Warn("could not parse translation, keeping category name", "category", word, "error", err)
		return word, nil
	}
	if len(candidates) == 0 || strings.TrimSpace(candidates[0]) == "" {
		t.logger.Info("no translation found, keeping category name", "category", word)
		return word, nil
	}

	translated := strings.TrimSpace(candidates[0])
	t.memo[word] = translated
	return translated, nil
}

// merge folds src into dst. Word lists are joined; a word list meeting a
// branch gives way to the branch.
func merge(dst, src *wordtree.Node) {
	switch {
	case dst.IsLeaf() && src.IsLeaf():
		dst.SetWords(append(dst.Words(), src.Words()...))
	case dst.IsLeaf():
		*dst = *src.Clone()
	case src.IsLeaf():
		return
	default:
		for _, key := range src.Keys() {
			child, _ := src.Get(key)
			if existing, err := dst.Get(key); err == nil {
				merge(existing, child)
				continue
			}
			dst.Set(key, child)
		}
	}
}
