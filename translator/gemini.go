package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ============================================================================
// GEMINI TRANSLATOR: Calls Google Gemini for instruction → statement
// ============================================================================
// One generateContent call per instruction. No retries, no rate limiting.
// The API key travels in the x-goog-api-key header so it never appears in
// URLs or in the errors net/http builds from them.
// ============================================================================

// GeminiTranslator implements Translator using the Google Gemini API.
type GeminiTranslator struct {
	config Config
	client *http.Client
	log    *slog.Logger
}

// NewGemini creates a new Gemini translator.
func NewGemini(cfg Config) (*GeminiTranslator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required (set GOOGLE_API_KEY)")
	}
	def := DefaultGeminiConfig(cfg.APIKey)
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	cfg.Provider = ProviderGemini

	return &GeminiTranslator{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    loggerOrDiscard(cfg.Logger).With("component", "translator", "provider", ProviderGemini),
	}, nil
}

// Translate asks Gemini for a statement and extracts it from the answer.
func (g *GeminiTranslator) Translate(ctx context.Context, instruction, sample string) (string, error) {
	g.log.Info("translating", "instruction", truncate(instruction, 80), "model", g.config.Model)

	response, err := g.callGemini(ctx, BuildPrompt(instruction, sample))
	if err != nil {
		g.log.Warn("gemini call failed", "error", err)
		return "", &TranslationError{Provider: ProviderGemini, Err: err}
	}

	stmt, err := ExtractStatement(response)
	if err != nil {
		g.log.Warn("unusable gemini answer", "error", err)
		return "", &TranslationError{Provider: ProviderGemini, Err: err}
	}

	g.log.Debug("statement generated", "code", stmt)
	return stmt, nil
}

// ============================================================================
// GEMINI API CALL
// ============================================================================

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// callGemini sends a prompt to the Gemini API and returns the text response.
func (g *GeminiTranslator) callGemini(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent", strings.TrimSuffix(g.config.Endpoint, "/"), g.config.Model)

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
	}
	if g.config.Temperature > 0 {
		reqBody.GenerationConfig = &geminiGenerationConfig{Temperature: g.config.Temperature}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if geminiResp.Error != nil {
		return "", fmt.Errorf("Gemini error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini returned empty response")
	}

	var text strings.Builder
	for _, p := range geminiResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}
