package executor

import (
	"io"
	"log/slog"
)

// ============================================================================
// EXECUTOR OPTIONS: Functional options for Execute()
// ============================================================================

// DefaultMaxCodeLength bounds the size of a statement accepted by Execute.
const DefaultMaxCodeLength = 4096

// Option configures executor behavior via functional options pattern.
type Option func(*config)

type config struct {
	MaxCodeLength int
	Logger        *slog.Logger
}

// WithMaxCodeLength rejects statements longer than n bytes. n <= 0 keeps the default.
func WithMaxCodeLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxCodeLength = n
		}
	}
}

// WithLogger sets the logger used for execution traces.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		MaxCodeLength: DefaultMaxCodeLength,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
