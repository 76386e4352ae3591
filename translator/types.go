package translator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ============================================================================
// TRANSLATOR: AI boundary for natural language → statement
// ============================================================================
// The Translator is the ONLY component that calls an external AI service.
// It receives the user's instruction plus a small sample of the table and
// returns one statement for the executor. Any failure is a
// *TranslationError; callers treat it as "no command" and change nothing.
// ============================================================================

// Translator turns an instruction into a single executable statement.
// Implementations: Gemini, OpenAI-compatible chat endpoints.
type Translator interface {
	Translate(ctx context.Context, instruction, sample string) (string, error)
}

// Func adapts a plain function to the Translator interface.
type Func func(ctx context.Context, instruction, sample string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, instruction, sample string) (string, error) {
	return f(ctx, instruction, sample)
}

// ErrMalformedOutput is wrapped when the model answered but no statement
// could be extracted from the answer.
var ErrMalformedOutput = errors.New("malformed model output")

// TranslationError reports that no statement could be produced.
type TranslationError struct {
	Provider string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s translator: %v", e.Provider, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds translator configuration.
type Config struct {
	Provider    string        // "gemini" (default) or "openai"
	APIKey      string        // provider API key; never logged
	Model       string        // model name (empty = provider default)
	Endpoint    string        // API endpoint override (empty = default)
	Timeout     time.Duration // 0 = no client timeout
	Temperature float64       // 0 = provider default
	Logger      *slog.Logger
}

// DefaultGeminiConfig returns a Config with Gemini defaults.
func DefaultGeminiConfig(apiKey string) Config {
	return Config{
		Provider: ProviderGemini,
		APIKey:   apiKey,
		Model:    "gemini-pro-latest",
		Endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
	}
}

// DefaultOpenAIConfig returns a Config with OpenAI defaults.
func DefaultOpenAIConfig(apiKey string) Config {
	return Config{
		Provider: ProviderOpenAI,
		APIKey:   apiKey,
		Model:    "gpt-4o-mini",
		Endpoint: "https://api.openai.com/v1",
	}
}

// New builds the translator selected by cfg.Provider.
func New(cfg Config) (Translator, error) {
	switch cfg.Provider {
	case "", ProviderGemini:
		return NewGemini(cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	}
	return nil, fmt.Errorf("unknown translator provider %q (want %s or %s)",
		cfg.Provider, ProviderGemini, ProviderOpenAI)
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
