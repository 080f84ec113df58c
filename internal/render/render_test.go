package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/salmonumbrella/perchance-cli/internal/thesaurus"
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

func TestPerchance(t *testing.T) {
	var buf bytes.Buffer
	if err := Perchance(&buf, thesaurus.FromMarkdown(charactersMarkdown)); err != nil {
		t.Fatalf("Perchance() error = %v", err)
	}

	want := strings.Join([]string{
		"characters",
		"  name=characters",
		"  age",
		"    name=age",
		"    adjective",
		"      name=adjective",
		"      baby",
		"      kid",
		"      old",
		"      young",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPerchanceSiblings(t *testing.T) {
	text := "# Lieux, Villes\n## Rue  Étroite\npavé\n## Place\nfontaine\n"
	var buf bytes.Buffer
	if err := Render(&buf, thesaurus.FromMarkdown(text), FormatPerchance); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "lieux_villes\n" +
		"  name=lieux, villes\n" +
		"  rue_étroite\n" +
		"    name=rue  étroite\n" +
		"    pavé\n" +
		"  place\n" +
		"    name=place\n" +
		"    fontaine\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyName(t *testing.T) {
	tests := map[string]string{
		"Characters":       "characters",
		"Entre deux ages":  "entre_deux_ages",
		"Age, Adjective":   "age_adjective",
		"  Spaced   Out  ": "spaced_out",
		"ÉTÉ":              "été",
	}
	for in, want := range tests {
		if got := KeyName(in); got != want {
			t.Errorf("KeyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	in := "# Personnages\n## Sexe\n### Adjectifs\nmasculin\nféminin\n# Vide\n"
	tree := thesaurus.FromMarkdown(in)

	var buf bytes.Buffer
	if err := Render(&buf, tree, FormatYAML); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "féminin") {
		t.Fatalf("expected unescaped unicode, got:\n%s", buf.String())
	}

	back, err := wordtree.ParseYAML(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if !back.Equal(tree) {
		t.Fatalf("round trip changed the tree:\n%s", buf.String())
	}
}

func TestYAMLLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := YAML(&buf, thesaurus.FromMarkdown(charactersMarkdown)); err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	want := `root:
  Characters:
    Age:
      Adjective:
        words:
          - baby
          - kid
          - old
          - young
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatYAML, "YML": FormatYAML, "perchance": FormatPerchance} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
	if FormatPerchance.Extension() != ".txt" || FormatYAML.Extension() != ".yml" {
		t.Error("unexpected extensions")
	}
}
