// Package llm talks to an OpenAI-compatible chat completion endpoint and
// caches its answers by prompt content.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrUnavailable means the completion service cannot be used with the
// current configuration (no API key, no usable cache directory).
var ErrUnavailable = errors.New("text completion service unavailable")

// Request is a single prompt sent to the model.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
}

// Response holds the model's answer.
type Response struct {
	Content string
	// Cached is true when the answer came from the response cache.
	Cached bool
}

// Completer answers prompts.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (Response, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// CacheKey returns the content address of a request: the hex sha256 of the
// model, system prompt and user prompt separated by NUL bytes.
func CacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Model))
	h.Write([]byte{0})
	h.Write([]byte(req.SystemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(req.UserPrompt))
	return hex.EncodeToString(h.Sum(nil))
}
