package thesaurus

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

const charactersMarkdown = `
# Characters
## Age
### Adjective
baby
kid
old
young
`

func TestFromMarkdownCharacters(t *testing.T) {
	tree := FromMarkdown(charactersMarkdown)

	want := map[string]any{
		"root": map[string]any{
			"Characters": map[string]any{
				"Age": map[string]any{
					"Adjective": map[string]any{
						"words": []string{"baby", "kid", "old", "young"},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, tree.Extract()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSiblingsAndDepthJumps(t *testing.T) {
	text := `# Animals
## Mammals
cat
dog
## Birds
### Small
sparrow
# Places
#### Deep
cave
`
	tree := FromMarkdown(text)

	var paths [][]string
	for kp := range wordtree.Collect(tree) {
		paths = append(paths, kp.Path)
	}
	want := [][]string{
		{"root", "Animals", "Mammals"},
		{"root", "Animals", "Birds", "Small"},
		{"root", "Places", "Deep"},
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNoHeadingsGivesEmptyRoot(t *testing.T) {
	tree := FromMarkdown("some words\nwithout headings\n")
	root, err := tree.Get("root")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	if root.IsLeaf() || root.Len() != 0 {
		t.Fatalf("expected empty root branch, got %v with %d entries", root.Kind(), root.Len())
	}
}

func TestBuildEmptyCategoryStaysBranch(t *testing.T) {
	tree := FromMarkdown("# A\n# B\nword\n")
	a, err := tree.Lookup("root", "A")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a.IsLeaf() || a.Len() != 0 {
		t.Fatal("expected empty branch for A")
	}
}

func TestBuildTrimsTitles(t *testing.T) {
	tree := FromMarkdown("#   Spaced Title   \nword\n")
	if _, err := tree.Lookup("root", "Spaced Title"); err != nil {
		t.Fatalf("lookup trimmed title: %v", err)
	}
}

func TestBuildDuplicateTitleOverwrites(t *testing.T) {
	tree := FromMarkdown("# A\n## B\nfirst\n## C\nc\n## B\nsecond\n")
	a, _ := tree.Lookup("root", "A")
	if diff := cmp.Diff([]string{"B", "C"}, a.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	b, _ := a.Get("B")
	if diff := cmp.Diff([]string{"second"}, b.Words()); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIgnoresHeadingsUnderWords(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tree := FromMarkdown("# A\n## B\nword\n### Hidden\nhidden\n## C\nc\n", WithLogger(logger))

	a, _ := tree.Lookup("root", "A")
	if diff := cmp.Diff([]string{"B", "C"}, a.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	b, _ := a.Get("B")
	if diff := cmp.Diff([]string{"word"}, b.Words()); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "Hidden") {
		t.Fatalf("expected malformed input to be logged, got %q", logs.String())
	}
}

func TestBuildMatchesExpectedYAML(t *testing.T) {
	in, err := os.ReadFile(filepath.Join("testdata", "thesaurus.md"))
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	expected, err := os.ReadFile(filepath.Join("testdata", "thesaurus.yml"))
	if err != nil {
		t.Fatalf("read expected: %v", err)
	}

	tree, err := ReadMarkdown(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}

	adj, err := tree.Lookup("root", "Personnages", "Sexe", "Adjectifs")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"féminin", "masculin"}, adj.Words()); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}

	generated, err := yaml.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got, want any
	if err := yaml.Unmarshal(generated, &got); err != nil {
		t.Fatalf("unmarshal generated: %v", err)
	}
	if err := yaml.Unmarshal(expected, &want); err != nil {
		t.Fatalf("unmarshal expected: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}
