package correct

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseReplacements(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Replacement
		wantErr bool
	}{
		{
			name:  "leading prose",
			input: "I think the answer is:\n[[\"old\",\"elderly\"]]",
			want:  []Replacement{{"old", "elderly"}},
		},
		{
			name:  "multi-line list with trailing text",
			input: "[\n  [\"agé\", \"âgé\"],\n  [\"ages\", \"âges\"]\n]\nHope this helps.",
			want:  []Replacement{{"agé", "âgé"}, {"ages", "âges"}},
		},
		{
			name:  "empty list",
			input: "[]",
			want:  []Replacement{},
		},
		{
			name:  "windows line endings",
			input: "Sure:\r\n[[\"a\",\"b\"]]\r\n",
			want:  []Replacement{{"a", "b"}},
		},
		{
			name:    "no list line",
			input:   "garbage without any list",
			wantErr: true,
		},
		{
			name:    "invalid json",
			input:   "[[\"a\", ]",
			wantErr: true,
		},
		{
			name:    "not pairs",
			input:   `[["a", "b", "c"]]`,
			wantErr: true,
		},
		{
			name:    "bracket in the middle of a line",
			input:   `answer: [["a","b"]]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReplacements(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrResponseParse) {
					t.Fatalf("expected ErrResponseParse, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReplacements() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("replacements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
