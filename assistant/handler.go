package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kisan-gateway/assistant/domain"
	"kisan-gateway/logging"
	"kisan-gateway/middleware/ratelimit"
	rldomain "kisan-gateway/middleware/ratelimit/domain"
)

// limite do corpo JSON de entrada; o histórico do widget fica bem abaixo disso
const maxBodyBytes = 1 << 20

type ChatHandler interface {
	Handle(ctx context.Context, req domain.ChatRequest, clientKey string) domain.ChatReply
}

type SpeechRelay interface {
	Relay(ctx context.Context, text, voiceID string, lang domain.LanguageMode) (domain.Audio, error)
}

type Options struct {
	Chat ChatHandler
	TTS  SpeechRelay
	// Stats é opcional; sem ele GET /stats responde 404.
	Stats rldomain.StatsReader

	KeyFn       ratelimit.KeyFunc
	AllowOrigin string

	// Proteções só do /tts: token bucket por cliente e teto de concorrência.
	TTSRateLimit   ratelimit.Options
	TTSConcurrency ratelimit.ConcurrencyOptions
}

type handler struct {
	chat  ChatHandler
	tts   SpeechRelay
	stats rldomain.StatsReader
	keyFn ratelimit.KeyFunc
}

// NewRouter monta as rotas HTTP do gateway.
func NewRouter(opts Options) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = ratelimit.DefaultKeyFunc("", false)
	}
	if opts.TTSRateLimit.KeyFn == nil {
		opts.TTSRateLimit.KeyFn = opts.KeyFn
	}
	h := &handler{chat: opts.Chat, tts: opts.TTS, stats: opts.Stats, keyFn: opts.KeyFn}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(opts.AllowOrigin))

	r.Get("/healthz", h.healthz)
	r.Get("/stats", h.statsTotals)

	r.Options("/chat", preflight)
	r.Post("/chat", h.chatReply)

	r.Options("/tts", preflight)
	r.With(
		ratelimit.Middleware(opts.TTSRateLimit),
		ratelimit.ConcurrencyMiddleware(opts.TTSConcurrency),
	).Post("/tts", h.speech)

	return r
}

type chatPayload struct {
	Message  string               `json:"message"`
	LangMode string               `json:"lang_mode"`
	History  []domain.HistoryItem `json:"history"`
}

type chatResponse struct {
	Reply     string        `json:"reply"`
	ReplyHTML string        `json:"reply_html"`
	Status    domain.Status `json:"status"`
}

func (h *handler) chatReply(w http.ResponseWriter, r *http.Request) {
	var in chatPayload
	if err := decodeJSON(w, r, &in); err != nil {
		logging.FromCtx(r.Context()).Debug().Err(err).Msg("malformed chat payload")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply := h.chat.Handle(r.Context(), domain.ChatRequest{
		Message:      in.Message,
		LanguageMode: domain.ParseLanguageMode(in.LangMode),
		History:      in.History,
	}, h.keyFn(r))

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:     reply.Text,
		ReplyHTML: renderReplyHTML(reply.Text),
		Status:    reply.Status,
	})
}

type ttsPayload struct {
	Text     string `json:"text"`
	VoiceID  string `json:"voiceId"`
	LangMode string `json:"lang_mode"`
}

func (h *handler) speech(w http.ResponseWriter, r *http.Request) {
	var in ttsPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var lang domain.LanguageMode
	if strings.TrimSpace(in.LangMode) != "" {
		lang = domain.ParseLanguageMode(in.LangMode)
	}

	audio, err := h.tts.Relay(r.Context(), in.Text, in.VoiceID, lang)
	if err != nil {
		status, msg := speechErrorStatus(err)
		logging.FromCtx(r.Context()).Warn().Err(err).Int("status", status).Msg("tts relay failed")
		writeJSONError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Bytes)
}

func speechErrorStatus(err error) (int, string) {
	var upErr *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return http.StatusBadRequest, "text is required"
	case errors.Is(err, domain.ErrTTSDisabled):
		return http.StatusServiceUnavailable, "text-to-speech is not configured"
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, "text-to-speech upstream error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "text-to-speech timed out"
	default:
		return http.StatusBadGateway, "text-to-speech unavailable"
	}
}

func (h *handler) statsTotals(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSONError(w, http.StatusNotFound, "stats disabled")
		return
	}
	totals, err := h.stats.Totals(r.Context())
	if err != nil {
		logging.FromCtx(r.Context()).Warn().Err(err).Msg("failed to read rate limit stats")
		writeJSONError(w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
