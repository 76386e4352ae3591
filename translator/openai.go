package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ============================================================================
// OPENAI TRANSLATOR: Any OpenAI-compatible /chat/completions endpoint
// ============================================================================
// Works against api.openai.com and local servers that speak the same
// protocol (llama.cpp, vLLM, Ollama's /v1). The API key is optional when the
// endpoint is not the public one.
// ============================================================================

// OpenAITranslator implements Translator over the chat completions API.
type OpenAITranslator struct {
	config Config
	client *http.Client
	log    *slog.Logger
}

// NewOpenAI creates a new OpenAI-compatible translator.
func NewOpenAI(cfg Config) (*OpenAITranslator, error) {
	def := DefaultOpenAIConfig(cfg.APIKey)
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.APIKey == "" && cfg.Endpoint == def.Endpoint {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}
	cfg.Provider = ProviderOpenAI

	return &OpenAITranslator{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    loggerOrDiscard(cfg.Logger).With("component", "translator", "provider", ProviderOpenAI),
	}, nil
}

// Translate asks the chat endpoint for a statement and extracts it.
func (o *OpenAITranslator) Translate(ctx context.Context, instruction, sample string) (string, error) {
	o.log.Info("translating", "instruction", truncate(instruction, 80), "model", o.config.Model)

	response, err := o.chat(ctx, BuildPrompt(instruction, sample))
	if err != nil {
		o.log.Warn("chat call failed", "error", err)
		return "", &TranslationError{Provider: ProviderOpenAI, Err: err}
	}

	stmt, err := ExtractStatement(response)
	if err != nil {
		o.log.Warn("unusable chat answer", "error", err)
		return "", &TranslationError{Provider: ProviderOpenAI, Err: err}
	}

	o.log.Debug("statement generated", "code", stmt)
	return stmt, nil
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	Stream      bool            `json:"stream"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (o *OpenAITranslator) chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       o.config.Model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: o.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(o.config.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var chatResp openAIChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}
