package session

import (
	"io"
	"log/slog"
	"time"

	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/table"
)

// Option configures an Orchestrator via functional options pattern.
type Option func(*config)

type config struct {
	SampleRows  int
	ExecOptions []executor.Option
	Logger      *slog.Logger
	Now         func() time.Time
}

// WithSampleRows sets how many rows of the original table go into a prompt.
func WithSampleRows(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.SampleRows = n
		}
	}
}

// WithExecutorOptions passes options through to executor.Execute.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(c *config) {
		c.ExecOptions = append(c.ExecOptions, opts...)
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithClock sets the time source used to stamp log entries.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.Now = now
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		SampleRows: table.DefaultSampleRows,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
