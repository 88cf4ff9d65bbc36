package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kisan-gateway/assistant/domain"
)

const (
	DefaultMurfBaseURL = "https://global.api.murf.ai"

	// teto para o áudio em memória; 3000 caracteres de fala ficam bem abaixo disso
	maxAudioBytes = 20 << 20
)

type MurfConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type MurfClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ domain.Speech = (*MurfClient)(nil)

func NewMurfClient(cfg MurfConfig) *MurfClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMurfBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &MurfClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type murfRequest struct {
	VoiceID    string `json:"voiceId"`
	Text       string `json:"text"`
	Model      string `json:"model"`
	Style      string `json:"style"`
	Format     string `json:"format"`
	SampleRate int    `json:"sampleRate"`
}

func (c *MurfClient) Synthesize(ctx context.Context, req domain.SpeechRequest) (domain.Audio, error) {
	body := murfRequest{
		VoiceID:    req.VoiceID,
		Text:       req.Text,
		Model:      "Falcon",
		Style:      "Conversational",
		Format:     "MP3",
		SampleRate: 24000,
	}

	resp, err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/speech/stream", body, map[string]string{"api-key": c.apiKey})
	if err != nil {
		return domain.Audio{}, fmt.Errorf("murf: %w", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return domain.Audio{}, &domain.UpstreamError{Service: "murf", StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return domain.Audio{}, fmt.Errorf("murf: read audio: %w", err)
	}
	if len(audio) == 0 {
		return domain.Audio{}, &domain.UpstreamError{Service: "murf", StatusCode: http.StatusBadGateway, Body: "empty audio"}
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = "audio/mpeg"
	}
	return domain.Audio{Bytes: audio, ContentType: ct}, nil
}
