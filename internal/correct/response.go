package correct

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrResponseParse is returned when a model answer holds no usable JSON list.
var ErrResponseParse = errors.New("cannot parse model response")

// jsonListPayload drops any prose before the first line that opens a JSON
// list.
func jsonListPayload(text string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "[") {
			return strings.Join(lines[i:], "\n"), nil
		}
	}
	return "", fmt.Errorf("%w: no line starts with '['", ErrResponseParse)
}

// decodeList decodes the first JSON value of the payload into v, ignoring
// anything the model wrote after it.
func decodeList(text string, v any) error {
	payload, err := jsonListPayload(text)
	if err != nil {
		return err
	}
	if err := json.NewDecoder(strings.NewReader(payload)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseParse, err)
	}
	return nil
}

// ParseReplacements reads a list of [original, corrected] pairs.
func ParseReplacements(text string) ([]Replacement, error) {
	var pairs [][]string
	if err := decodeList(text, &pairs); err != nil {
		return nil, err
	}
	out := make([]Replacement, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: entry %d has %d elements, want 2", ErrResponseParse, i, len(pair))
		}
		out = append(out, Replacement{Original: pair[0], Corrected: pair[1]})
	}
	return out, nil
}

// parseTranslations reads a list of candidate translations.
func parseTranslations(text string) ([]string, error) {
	var candidates []string
	if err := decodeList(text, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}
