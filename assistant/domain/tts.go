package domain

import (
	"context"
	"errors"
)

var (
	ErrEmptyText   = errors.New("no text provided")
	ErrTTSDisabled = errors.New("tts is not configured")
)

type SpeechRequest struct {
	Text    string
	VoiceID string
}

type Audio struct {
	Bytes       []byte
	ContentType string
}

// Speech sintetiza áudio; erros não-2xx chegam como *UpstreamError.
type Speech interface {
	Synthesize(ctx context.Context, req SpeechRequest) (Audio, error)
}
