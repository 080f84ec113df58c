// Package thesaurus turns markdown outlines into category trees. Headings
// name the categories; the non-blank lines under the deepest headings are the
// words.
package thesaurus

import (
	"regexp"
	"slices"
	"strings"
)

// headingPattern matches a heading that is the first non-space content of a
// line. Group 1 is the run of markers, group 2 the title.
var headingPattern = regexp.MustCompile(`(?m)^[ ]*(#+)[ \t]*([^\n]*)`)

// Marker is a heading found in the source.
type Marker struct {
	Depth int
	Title string
	// Span is the [start, end) byte range of the whole heading match.
	Span [2]int
}

// Cue is a heading together with the words that follow it.
type Cue struct {
	Depth int
	Title string
	Lines []string
}

// Markers returns the headings of text in document order.
func Markers(text string) []Marker {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	markers := make([]Marker, 0, len(matches))
	for _, m := range matches {
		markers = append(markers, Marker{
			Depth: m[3] - m[2],
			Title: text[m[4]:m[5]],
			Span:  [2]int{m[0], m[1]},
		})
	}
	return markers
}

// Parse segments text into cues, one per heading. The lines of a cue are the
// trimmed, non-blank lines between its heading and the next one, deduplicated
// and sorted. Text before the first heading is ignored.
func Parse(text string) []Cue {
	markers := Markers(text)
	markers = append(markers, Marker{Depth: 0, Title: rootTitle, Span: [2]int{len(text), len(text)}})

	cues := make([]Cue, 0, len(markers)-1)
	for i := 0; i+1 < len(markers); i++ {
		cur, next := markers[i], markers[i+1]
		cues = append(cues, Cue{
			Depth: cur.Depth,
			Title: cur.Title,
			Lines: bodyLines(text[cur.Span[1]:next.Span[0]]),
		})
	}
	return cues
}

func bodyLines(body string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	slices.Sort(lines)
	return slices.Compact(lines)
}
