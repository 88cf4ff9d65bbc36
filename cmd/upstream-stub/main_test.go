package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisan-gateway/assistant/application"
	"kisan-gateway/assistant/domain"
	"kisan-gateway/assistant/infra"
)

func TestStub_ServesGeminiAndMurfClients(t *testing.T) {
	srv := httptest.NewServer(newStubRouter(0))
	defer srv.Close()

	prompt, err := application.RenderPrompt(application.PromptData{Date: "01-06-2025", LanguageInstruction: "English", Message: "when to sow wheat?"})
	require.NoError(t, err)

	out, err := infra.NewGeminiClient(infra.GeminiConfig{BaseURL: srv.URL + "/v1beta"}).
		Generate(context.Background(), prompt, domain.GenerationParams{Temperature: 0.7, MaxOutputTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "* Stub reply to: when to sow wheat?", application.NormalizeReply(out))

	audio, err := infra.NewMurfClient(infra.MurfConfig{BaseURL: srv.URL}).
		Synthesize(context.Background(), domain.SpeechRequest{Text: "hi", VoiceID: "Nikhil"})
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", audio.ContentType)
	assert.Equal(t, silentFrame, audio.Bytes)
}

func TestStub_ForcedFailure(t *testing.T) {
	srv := httptest.NewServer(newStubRouter(403))
	defer srv.Close()

	_, err := infra.NewGeminiClient(infra.GeminiConfig{BaseURL: srv.URL + "/v1beta"}).
		Generate(context.Background(), "p", domain.GenerationParams{})

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 403, upErr.StatusCode)
}
