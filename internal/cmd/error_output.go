package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/perchance-cli/internal/correct"
	"github.com/salmonumbrella/perchance-cli/internal/lang"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/output"
	"github.com/salmonumbrella/perchance-cli/internal/wordtree"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		if ctx == nil {
			return "text"
		}
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	stderr := stderrFromContext(ctx)
	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderr)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderr)
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderr, "Error:", err)
}

func buildErrorEnvelope(err error) map[string]any {
	errMap := map[string]any{
		"message":  err.Error(),
		"type":     "error",
		"category": "system",
	}
	classify := func(typ, category string) {
		errMap["type"] = typ
		errMap["category"] = category
	}

	var authErr llm.AuthenticationError
	var rateErr llm.RateLimitError
	var apiErr llm.APIError
	var filesErr *filesFailedError

	switch {
	case errors.As(err, &filesErr):
		classify("partial_failure", "user")
		errMap["files"] = filesErr.Files
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		classify("canceled", "system")
	case errors.As(err, &authErr):
		classify("auth", "user")
	case errors.As(err, &rateErr):
		classify("rate_limit", "system")
	case errors.As(err, &apiErr):
		classify("api", "system")
		errMap["status"] = apiErr.StatusCode
	case errors.Is(err, llm.ErrUnavailable):
		classify("unavailable", "user")
	case errors.Is(err, lang.ErrUnknownLanguage):
		classify("validation", "user")
	case errors.Is(err, wordtree.ErrMalformedTree):
		classify("invalid_input", "user")
	case errors.Is(err, wordtree.ErrKeyNotFound), errors.Is(err, correct.ErrWordNotFound):
		classify("not_found", "user")
	}

	return map[string]any{"error": errMap}
}
