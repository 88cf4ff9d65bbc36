package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendREST  = "rest"
	BackendGenAI = "genai"
)

type ServerConfig struct {
	ListenAddr      string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogJSON         bool   `env:"LOG_JSON" envDefault:"false"`
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
	// RateKeyHeader vazio identifica o cliente pelo IP.
	RateKeyHeader string `env:"RATE_KEY_HEADER"`
	TrustXFF      bool   `env:"TRUST_XFF" envDefault:"false"`
}

type ChatConfig struct {
	RateLimit    int64         `env:"CHAT_RATE_LIMIT" envDefault:"25"`
	RateWindow   time.Duration `env:"CHAT_RATE_WINDOW" envDefault:"60s"`
	HistoryLimit int           `env:"CHAT_HISTORY_LIMIT" envDefault:"0"`
	Timeout      time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`
}

type GeminiConfig struct {
	Backend         string  `env:"LLM_BACKEND" envDefault:"rest"`
	APIKey          string  `env:"GEMINI_API_KEY,required,notEmpty"`
	BaseURL         string  `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	Model           string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature     float64 `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	MaxOutputTokens int     `env:"GEMINI_MAX_OUTPUT_TOKENS" envDefault:"500"`
}

type TTSConfig struct {
	// MurfAPIKey vazio desliga o /tts (503).
	MurfAPIKey         string        `env:"MURF_API_KEY"`
	MurfBaseURL        string        `env:"MURF_BASE_URL" envDefault:"https://global.api.murf.ai"`
	DefaultVoice       string        `env:"MURF_DEFAULT_VOICE" envDefault:"Namrita"`
	Timeout            time.Duration `env:"TTS_TIMEOUT" envDefault:"60s"`
	RateRPS            float64       `env:"TTS_RATE_RPS" envDefault:"1"`
	RateBurst          int           `env:"TTS_RATE_BURST" envDefault:"5"`
	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"20"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`
}

type RedisConfig struct {
	// Addr vazio mantém contadores e estatísticas em memória (uma instância só).
	Addr        string        `env:"REDIS_ADDR"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	StatsPrefix string        `env:"RATE_STATS_PREFIX" envDefault:"ratelimit:stats"`
	StatsTTL    time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
}

type ChatLogConfig struct {
	// Path vazio desliga o log de conversas.
	Path      string `env:"CHATLOG_PATH"`
	QueueSize int    `env:"CHATLOG_QUEUE_SIZE" envDefault:"256"`
}

type Config struct {
	Server  ServerConfig
	Chat    ChatConfig
	Gemini  GeminiConfig
	TTS     TTSConfig
	Redis   RedisConfig
	ChatLog ChatLogConfig
}

// Load lê a configuração completa do servidor a partir do ambiente.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadChatLog lê só o necessário para consultar o histórico, sem exigir as chaves de API.
func LoadChatLog() (*ChatLogConfig, error) {
	c := &ChatLogConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("failed to parse chat log config: %w", err)
	}
	return c, nil
}

func (c *Config) validate() error {
	var errs []error
	c.Gemini.Backend = strings.ToLower(strings.TrimSpace(c.Gemini.Backend))
	if c.Gemini.Backend != BackendREST && c.Gemini.Backend != BackendGenAI {
		errs = append(errs, fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", BackendREST, BackendGenAI, c.Gemini.Backend))
	}
	if c.Chat.RateLimit <= 0 {
		errs = append(errs, errors.New("CHAT_RATE_LIMIT must be > 0"))
	}
	if c.Chat.RateWindow <= 0 {
		errs = append(errs, errors.New("CHAT_RATE_WINDOW must be > 0"))
	}
	if c.Chat.HistoryLimit < 0 {
		errs = append(errs, errors.New("CHAT_HISTORY_LIMIT must be >= 0"))
	}
	if c.TTS.RateRPS <= 0 {
		errs = append(errs, errors.New("TTS_RATE_RPS must be > 0"))
	}
	if c.TTS.RateBurst <= 0 {
		errs = append(errs, errors.New("TTS_RATE_BURST must be > 0"))
	}
	if c.TTS.ConcurrencyMax < 0 {
		errs = append(errs, errors.New("CONCURRENCY_MAX must be >= 0"))
	}
	return errors.Join(errs...)
}

// IsDebug é lido antes do resto da configuração, para o logger já nascer no nível certo.
func IsDebug() bool {
	v, _ := strconv.ParseBool(os.Getenv("DEBUG"))
	return v
}
