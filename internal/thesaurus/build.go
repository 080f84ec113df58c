package thesaurus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

const rootTitle = wordtree.RootKey

// ErrMalformedInput marks headings nested under a heading that already holds
// words. Such headings are dropped, never raised.
var ErrMalformedInput = errors.New("malformed thesaurus")

// Option configures Build.
type Option func(*builder)

// WithLogger sets the logger that receives malformed-input reports.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type builder struct {
	cues    []Cue
	visited []bool
	logger  *slog.Logger
}

// Build assembles cues into a category tree rooted at "root". A cue with
// lines becomes a leaf holder; a cue without lines owns every following cue
// that is deeper than itself. A repeated title at the same level replaces the
// earlier category.
func Build(cues []Cue, opts ...Option) *wordtree.Node {
	all := make([]Cue, 0, len(cues)+1)
	all = append(all, Cue{Depth: 0, Title: rootTitle})
	all = append(all, cues...)

	b := &builder{
		cues:    all,
		visited: make([]bool, len(all)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	return wordtree.NewDocument(b.build(0))
}

func (b *builder) build(index int) *wordtree.Node {
	b.visited[index] = true
	cue := b.cues[index]

	if len(cue.Lines) > 0 {
		b.skipNested(index)
		return wordtree.NewLeaf(cue.Lines)
	}

	node := wordtree.NewBranch()
	for i := index + 1; i < len(b.cues); i++ {
		next := b.cues[i]
		if next.Depth <= cue.Depth {
			break
		}
		if b.visited[i] {
			continue
		}
		node.Set(strings.TrimSpace(next.Title), b.build(i))
	}
	return node
}

// skipNested marks the headings below a leaf holder as consumed.
func (b *builder) skipNested(index int) {
	parent := b.cues[index]
	for i := index + 1; i < len(b.cues) && b.cues[i].Depth > parent.Depth; i++ {
		b.visited[i] = true
		b.logger.Debug("ignoring heading under a word list",
			"heading", strings.TrimSpace(b.cues[i].Title),
			"parent", strings.TrimSpace(parent.Title),
			"error", fmt.Errorf("%w: heading %q nested under words", ErrMalformedInput, strings.TrimSpace(b.cues[i].Title)),
		)
	}
}

// FromMarkdown parses and builds in one step.
func FromMarkdown(text string, opts ...Option) *wordtree.Node {
	return Build(Parse(text), opts...)
}

// ReadMarkdown reads the whole of r and builds its tree.
func ReadMarkdown(r io.Reader, opts ...Option) (*wordtree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}
	return FromMarkdown(string(data), opts...), nil
}
