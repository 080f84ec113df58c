// Package lang resolves the language argument of the CLI, given either as an
// English name ("French") or as a BCP 47 / ISO 639 code ("fr", "fra").
package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownLanguage is returned when the argument names no known language.
var ErrUnknownLanguage = errors.New("language not recognized")

// Language identifies the language of a word list.
type Language struct {
	Tag language.Tag
	// Name is the English name, e.g. "French".
	Name string
	// Alpha3 is the ISO 639-3 code, e.g. "fra".
	Alpha3 string
}

func (l Language) String() string { return l.Name }

var englishNames = display.English.Languages()

// Resolve finds the language named by s.
func Resolve(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Language{}, fmt.Errorf("%w: empty language", ErrUnknownLanguage)
	}

	if tag, ok := byName(s); ok {
		return fromTag(tag), nil
	}

	tag, err := language.Parse(s)
	if err != nil {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	return fromTag(language.Make(base.String())), nil
}

func byName(s string) (language.Tag, bool) {
	for _, tag := range display.Supported.Tags() {
		base, _ := tag.Base()
		candidate := language.Make(base.String())
		if strings.EqualFold(englishNames.Name(candidate), s) {
			return candidate, true
		}
	}
	return language.Und, false
}

func fromTag(tag language.Tag) Language {
	base, _ := tag.Base()
	name := englishNames.Name(tag)
	if name == "" {
		name = base.String()
	}
	return Language{Tag: tag, Name: name, Alpha3: base.ISO3()}
}

// Lower lowercases s with the casing rules of l.
func (l Language) Lower(s string) string {
	return cases.Lower(l.Tag).String(s)
}

// Lower lowercases s without language-specific rules.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
