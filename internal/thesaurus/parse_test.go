package thesaurus

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarkers(t *testing.T) {
	text := "\n# Running journal\nThis document register my running trainings.\n## 1st April 2024\nRan 5km in 30 minutes.\n"

	got := Markers(text)
	want := []Marker{
		{Depth: 1, Title: "Running journal", Span: [2]int{1, 18}},
		{Depth: 2, Title: "1st April 2024", Span: [2]int{64, 81}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markers mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkersRequireLineStart(t *testing.T) {
	text := "word # not a heading\n   ## Indented\nC# is a language\n"
	got := Markers(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 marker, got %+v", got)
	}
	if got[0].Depth != 2 || got[0].Title != "Indented" {
		t.Fatalf("unexpected marker %+v", got[0])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Cue
	}{
		{
			name: "no headings",
			text: "just words\nmore words\n",
			want: []Cue{},
		},
		{
			name: "adjacent headings",
			text: "# A\n## B\n",
			want: []Cue{
				{Depth: 1, Title: "A"},
				{Depth: 2, Title: "B"},
			},
		},
		{
			name: "body is trimmed sorted and deduplicated",
			text: "# A\n\n  young \nbaby\n\nyoung\n\t\nkid\n",
			want: []Cue{
				{Depth: 1, Title: "A", Lines: []string{"baby", "kid", "young"}},
			},
		},
		{
			name: "preamble ignored",
			text: "intro\n# A\nword\n",
			want: []Cue{
				{Depth: 1, Title: "A", Lines: []string{"word"}},
			},
		},
		{
			name: "no trailing newline",
			text: "# A\n## B\nlast",
			want: []Cue{
				{Depth: 1, Title: "A"},
				{Depth: 2, Title: "B", Lines: []string{"last"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("cues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
