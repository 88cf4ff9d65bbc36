package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoCompletion indica resposta 2xx do modelo sem texto aproveitável
// (JSON inválido, sem candidates, texto vazio).
var ErrNoCompletion = errors.New("upstream returned no completion")

type GenerationParams struct {
	Temperature     float64
	MaxOutputTokens int
}

// LLM gera texto a partir de um prompt já renderizado.
type LLM interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// UpstreamError é uma resposta não-2xx de uma API externa.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream returned http %d: %s", e.Service, e.StatusCode, e.Body)
}
