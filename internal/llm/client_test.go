package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientComplete(t *testing.T) {
	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[[\"old\",\"elderly\"]]"}}]}`))
	}))
	defer server.Close()

	c := NewClient("sk-test", WithBaseURL(server.URL+"/"))
	resp, err := c.Complete(context.Background(), Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Model:        "gpt-test",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != `[["old","elderly"]]` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Model != "gpt-test" || len(got.Messages) != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Messages[0].Role != "system" || got.Messages[1].Content != "user" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestClientDefaultModel(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	if _, err := NewClient("k", WithBaseURL(server.URL)).Complete(context.Background(), Request{UserPrompt: "u"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("expected only a user message, got %+v", got.Messages)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"bad key"}}`,
			check: func(t *testing.T, err error) {
				var authErr AuthenticationError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthenticationError, got %T %v", err, err)
				}
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `slow down`,
			check: func(t *testing.T, err error) {
				var rateErr RateLimitError
				if !errors.As(err, &rateErr) {
					t.Fatalf("expected RateLimitError, got %T %v", err, err)
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `{"error":{"message":"upstream"}}`,
			check: func(t *testing.T, err error) {
				var apiErr APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %T %v", err, err)
				}
				if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream" {
					t.Fatalf("unexpected APIError %+v", apiErr)
				}
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected error for empty choices")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient("k", WithBaseURL(server.URL)).Complete(context.Background(), Request{UserPrompt: "u"})
			tt.check(t, err)
			if calls != 1 {
				t.Fatalf("expected a single call, got %d", calls)
			}
		})
	}
}
