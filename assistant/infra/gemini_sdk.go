package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"kisan-gateway/assistant/domain"
)

// GenAIClient usa o SDK oficial (google.golang.org/genai) em vez do REST manual.
// Selecionado com LLM_BACKEND=genai.
type GenAIClient struct {
	client *genai.Client
	model  string
}

var _ domain.LLM = (*GenAIClient)(nil)

func NewGenAIClient(ctx context.Context, cfg GeminiConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	// o SDK já inclui a versão da API no caminho; aqui só entra o host
	if base := strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/v1beta"); base != "" && cfg.BaseURL != DefaultGeminiBaseURL {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return &GenAIClient{client: client, model: cfg.Model}, nil
}

func (c *GenAIClient) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		MaxOutputTokens: int32(params.MaxOutputTokens),
	})
	if err != nil {
		return "", upstreamFromSDK(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("genai: no candidates: %w", domain.ErrNoCompletion)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("genai: empty text: %w", domain.ErrNoCompletion)
	}
	return sb.String(), nil
}

// upstreamFromSDK converte o APIError do SDK no mesmo erro que o cliente REST devolve,
// para o gateway escolher a mensagem pelo status.
func upstreamFromSDK(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{Service: "genai", StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.UpstreamError{Service: "genai", StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return fmt.Errorf("genai: generate: %w", err)
}
