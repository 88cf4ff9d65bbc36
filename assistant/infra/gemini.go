package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kisan-gateway/assistant/domain"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash"
)

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiClient chama generateContent via REST. A chave vai no header x-goog-api-key.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ domain.LLM = (*GeminiClient)(nil)

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxOutputTokens,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	resp, err := postJSON(ctx, c.httpClient, url, reqBody, map[string]string{"x-goog-api-key": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return "", &domain.UpstreamError{Service: "gemini", StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}
	return parseGeminiResponse(body)
}

// parseGeminiResponse junta o texto das parts do primeiro candidate.
func parseGeminiResponse(body []byte) (string, error) {
	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gemini: decode: %v: %w", err, domain.ErrNoCompletion)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates: %w", domain.ErrNoCompletion)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini: empty text (finishReason=%s): %w", out.Candidates[0].FinishReason, domain.ErrNoCompletion)
	}
	return sb.String(), nil
}
