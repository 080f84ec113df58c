package correct

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/salmonumbrella/perchance-cli/internal/lang"
)

//go:embed prompts
var promptFS embed.FS

var funcs = template.FuncMap{"join": strings.Join}

var (
	correctSystemTmpl   = mustTemplate("prompts/correct_words/system.txt.tmpl")
	correctUserTmpl     = mustTemplate("prompts/correct_words/user.txt.tmpl")
	translateSystemTmpl = mustTemplate("prompts/translate/system.txt.tmpl")
	translateUserTmpl   = mustTemplate("prompts/translate/user.txt.tmpl")
)

func mustTemplate(name string) *template.Template {
	return template.Must(template.New(path.Base(name)).Funcs(funcs).ParseFS(promptFS, name))
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// examples returns the worked examples for a language, empty when none ship
// with the binary.
func examples(l lang.Language) string {
	data, err := fs.ReadFile(promptFS, path.Join("prompts", "correct_words", "examples", l.Alpha3+".txt"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// CorrectionPrompts renders the system and user prompts for one category.
// The output depends only on its arguments, so identical inputs hit the
// response cache.
func CorrectionPrompts(l lang.Language, categories, words []string) (system, user string, err error) {
	system, err = render(correctSystemTmpl, struct {
		Language string
		Examples string
	}{Language: l.Name, Examples: examples(l)})
	if err != nil {
		return "", "", err
	}
	user, err = render(correctUserTmpl, struct {
		Categories []string
		Words      []string
	}{Categories: categories, Words: words})
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

// TranslationPrompts renders the prompts for translating one category name.
func TranslationPrompts(from, to lang.Language, word string) (system, user string, err error) {
	data := struct {
		From string
		To   string
		Word string
	}{From: from.Name, To: to.Name, Word: word}

	if system, err = render(translateSystemTmpl, data); err != nil {
		return "", "", err
	}
	if user, err = render(translateUserTmpl, data); err != nil {
		return "", "", err
	}
	return system, user, nil
}
