package application

import (
	"context"
	"strings"
	"time"

	"kisan-gateway/assistant/domain"
)

const (
	DefaultMaxTTSChars = 3000
	DefaultTTSTimeout  = 60 * time.Second
	DefaultVoice       = "Namrita"

	ttsEllipsis = "..."
)

// vozes da Murf por idioma quando o cliente não escolhe uma
var voicesByLanguage = map[domain.LanguageMode]string{
	domain.LangHindi:   "Namrita",
	domain.LangEnglish: "Nikhil",
	domain.LangMarathi: "Alicia",
}

type TTSOptions struct {
	// Speech nil desliga o relay (ErrTTSDisabled).
	Speech       domain.Speech
	DefaultVoice string
	MaxChars     int
	Timeout      time.Duration
}

// TTSRelay repassa o texto ao TTS e devolve o áudio sem alterar. Diferente do chat,
// erros sobem para o HTTP: o corpo é binário e não comporta uma mensagem amigável.
type TTSRelay struct {
	speech       domain.Speech
	defaultVoice string
	maxChars     int
	timeout      time.Duration
}

func NewTTSRelay(opts TTSOptions) *TTSRelay {
	if opts.DefaultVoice == "" {
		opts.DefaultVoice = DefaultVoice
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxTTSChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTTSTimeout
	}
	return &TTSRelay{
		speech:       opts.Speech,
		defaultVoice: opts.DefaultVoice,
		maxChars:     opts.MaxChars,
		timeout:      opts.Timeout,
	}
}

// Relay sintetiza text. lang vazio significa "não informado" e usa a voz padrão.
func (r *TTSRelay) Relay(ctx context.Context, text, voiceID string, lang domain.LanguageMode) (domain.Audio, error) {
	if r.speech == nil {
		return domain.Audio{}, domain.ErrTTSDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Audio{}, domain.ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.speech.Synthesize(ctx, domain.SpeechRequest{
		Text:    TruncateText(text, r.maxChars),
		VoiceID: r.voice(voiceID, lang),
	})
}

func (r *TTSRelay) voice(voiceID string, lang domain.LanguageMode) string {
	if v := strings.TrimSpace(voiceID); v != "" {
		return v
	}
	if v, ok := voicesByLanguage[lang]; ok {
		return v
	}
	return r.defaultVoice
}

// TruncateText corta em max caracteres (runes, não bytes) e acrescenta "...".
func TruncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + ttsEllipsis
}
