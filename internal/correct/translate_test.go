package correct

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/thesaurus"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

// wordCompleter answers translation prompts by exact category name.
type wordCompleter struct {
	answers map[string]string
	calls   int
}

func (w *wordCompleter) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	w.calls++
	return llm.Response{Content: w.answers[strings.TrimSpace(req.UserPrompt)]}, nil
}

func TestTranslateTree(t *testing.T) {
	fr, _ := lang.Resolve("French")
	en, _ := lang.Resolve("English")

	tree := thesaurus.FromMarkdown(`# Personnages
## Age
### Adjectifs
vieux
## Âge
### Adjectifs
jeune
# Lieux
## Ville
rue
`)
	fake := &wordCompleter{answers: map[string]string{
		"Personnages": `["Characters", "Figures"]`,
		"Age":         `["Age"]`,
		"Âge":         `["Age"]`,
		"Adjectifs":   `["Adjectives"]`,
		"Lieux":       `[]`,
		"Ville":       `not json`,
	}}

	tr := NewTranslator(fake)
	got, err := tr.TranslateTree(context.Background(), tree, fr, en)
	if err != nil {
		t.Fatalf("TranslateTree() error = %v", err)
	}

	want := wordtree.NewBranch()
	age := wordtree.NewBranch()
	age.Set("Adjectives", wordtree.NewLeaf([]string{"jeune", "vieux"}))
	characters := wordtree.NewBranch()
	characters.Set("Age", age)
	places := wordtree.NewBranch()
	places.Set("Ville", wordtree.NewLeaf([]string{"rue"}))
	want.Set("Characters", characters)
	want.Set("Lieux", places)

	if diff := cmp.Diff(wordtree.NewDocument(want).Extract(), got.Extract()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	// Adjectifs is asked once thanks to the memo.
	if fake.calls != 6 {
		t.Fatalf("expected 6 calls, got %d", fake.calls)
	}

	orig, _ := tree.Lookup("root", "Personnages")
	if orig == nil {
		t.Fatal("source tree was modified")
	}
}

func TestTranslatePromptNamesLanguages(t *testing.T) {
	fr, _ := lang.Resolve("fr")
	en, _ := lang.Resolve("en")
	system, user, err := TranslationPrompts(fr, en, "Personnages")
	if err != nil {
		t.Fatalf("TranslationPrompts() error = %v", err)
	}
	if !strings.Contains(system, "from French to English") {
		t.Fatalf("unexpected system prompt %q", system)
	}
	if strings.TrimSpace(user) != "Personnages" {
		t.Fatalf("unexpected user prompt %q", user)
	}
}
