package cmd

import (
	"context"
	"io"
	"os"

	"github.com/salmonumbrella/perchance-cli/internal/config"
)

type errorFormatKey struct{}

type configKey struct{}

type ioKey struct{}

type ioState struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the loaded config, or an empty one.
func configFromContext(ctx context.Context) *config.Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
			return cfg
		}
	}
	return &config.Config{}
}

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, ioState{in: in, out: out, err: err})
}

func ioFromContext(ctx context.Context) ioState {
	var state ioState
	if ctx != nil {
		state, _ = ctx.Value(ioKey{}).(ioState)
	}
	if state.in == nil {
		state.in = os.Stdin
	}
	if state.out == nil {
		state.out = os.Stdout
	}
	if state.err == nil {
		state.err = os.Stderr
	}
	return state
}

func stdinFromContext(ctx context.Context) io.Reader  { return ioFromContext(ctx).in }
func stdoutFromContext(ctx context.Context) io.Writer { return ioFromContext(ctx).out }
func stderrFromContext(ctx context.Context) io.Writer { return ioFromContext(ctx).err }
