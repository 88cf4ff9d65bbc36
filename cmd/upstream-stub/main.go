// upstream-stub imita as APIs do Gemini e da Murf para rodar o gateway localmente
// sem chaves reais:
//
//	go run ./cmd/upstream-stub
//	GEMINI_BASE_URL=http://localhost:8090/v1beta MURF_BASE_URL=http://localhost:8090 GEMINI_API_KEY=dev MURF_API_KEY=dev gateway serve
//
// STUB_FAIL_STATUS força um status de erro em todas as respostas (ex: 403, 500).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kisan-gateway/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, flush := logging.NewContextWithLogger(ctx, logging.Options{Debug: true})
	defer flush()
	logger := logging.FromCtx(ctx)

	addr := ":8090"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	failStatus, _ := strconv.Atoi(os.Getenv("STUB_FAIL_STATUS"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           newStubRouter(failStatus),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Int("fail_status", failStatus).Msg("upstream stub listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newStubRouter(failStatus int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if failStatus >= 400 {
		r.Use(func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"stub failure"}}`, failStatus)
			})
		})
	}
	r.Post("/v1beta/models/{model}", generateContent)
	r.Post("/v1/speech/stream", speechStream)
	return r
}

// generateContent ecoa a pergunta do agricultor entre aspas, no formato de resposta do generateContent.
func generateContent(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(chi.URLParam(r, "model"), ":generateContent") {
		http.NotFound(w, r)
		return
	}
	var in struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Contents) == 0 || len(in.Contents[0].Parts) == 0 {
		http.Error(w, `{"error":{"message":"invalid request"}}`, http.StatusBadRequest)
		return
	}

	prompt := in.Contents[0].Parts[0].Text
	logging.FromCtx(r.Context()).Debug().Int("prompt_len", len(prompt)).Msg("generateContent")

	reply := map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]string{{"text": `"* Stub reply to: ` + question(prompt) + `"`}}},
			"finishReason": "STOP",
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}

// speechStream devolve um frame MP3 silencioso; o gateway só repassa os bytes.
func speechStream(w http.ResponseWriter, r *http.Request) {
	var in struct {
		VoiceID string `json:"voiceId"`
		Text    string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Text == "" {
		http.Error(w, `{"errorMessage":"text is required"}`, http.StatusBadRequest)
		return
	}
	logging.FromCtx(r.Context()).Debug().Str("voice", in.VoiceID).Int("chars", len([]rune(in.Text))).Msg("speech stream")

	w.Header().Set("Content-Type", "audio/mpeg")
	_, _ = w.Write(silentFrame)
}

const questionPrefix = "किसान का सवाल:"

func question(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if q, ok := strings.CutPrefix(lines[i], questionPrefix); ok {
			return strings.TrimSpace(q)
		}
	}
	return "?"
}

var silentFrame = append([]byte{0xff, 0xfb, 0x90, 0x64}, make([]byte, 413)...)
