package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug("calling model",
		"api_key", "plain-value",
		"header", "Bearer sk-abcdefghijklmnop",
		"error", errors.New("request with key sk-1234567890abcdef failed"),
		"category", "Characters > Age",
	)

	out := buf.String()
	for _, leaked := range []string{"plain-value", "sk-abcdefghijklmnop", "sk-1234567890abcdef"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("output leaks %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "Characters > Age") {
		t.Fatalf("expected regular attributes to survive: %s", out)
	}
	if !strings.Contains(out, MaskValue) {
		t.Fatalf("expected mask in output: %s", out)
	}
}

func TestRedactingHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false).With("token", "t0ken").WithGroup("req")
	logger.Info("sent", slog.Group("auth", slog.String("authorization", "Basic xyz")))

	out := buf.String()
	if strings.Contains(out, "t0ken") || strings.Contains(out, "Basic xyz") {
		t.Fatalf("output leaks secrets: %s", out)
	}
}

func TestVerboseLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be dropped without verbose, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
	logger := Discard()
	if FromContext(WithLogger(context.Background(), logger)) != logger {
		t.Fatal("expected stored logger")
	}
}
