package application

import (
	"context"
	"sync"

	"kisan-gateway/assistant/domain"
)

type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	params  domain.GenerationParams
	reply   string
	err     error
	// block segura a chamada até o ctx encerrar
	block bool
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.params = params
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeSink struct {
	entries []domain.ChatLogEntry
	full    bool
}

func (s *fakeSink) Enqueue(e domain.ChatLogEntry) bool {
	if s.full {
		return false
	}
	s.entries = append(s.entries, e)
	return true
}

type fakeSpeech struct {
	got   domain.SpeechRequest
	audio domain.Audio
	err   error
	calls int
}

func (f *fakeSpeech) Synthesize(_ context.Context, req domain.SpeechRequest) (domain.Audio, error) {
	f.calls++
	f.got = req
	return f.audio, f.err
}
