package domain

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type LanguageMode string

const (
	LangHindi   LanguageMode = "hindi"
	LangEnglish LanguageMode = "english"
	LangMarathi LanguageMode = "marathi"
)

// ParseLanguageMode normaliza o modo; qualquer valor desconhecido vira hindi.
func ParseLanguageMode(s string) LanguageMode {
	switch LanguageMode(strings.ToLower(strings.TrimSpace(s))) {
	case LangEnglish:
		return LangEnglish
	case LangMarathi:
		return LangMarathi
	default:
		return LangHindi
	}
}

type HistoryItem struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest é montado a cada chamada e não é persistido pelo gateway.
type ChatRequest struct {
	Message      string
	LanguageMode LanguageMode
	History      []HistoryItem
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ChatReply carrega a falha apenas no texto: Status continua success nos caminhos
// de rate limit, validação e falha do upstream.
type ChatReply struct {
	Text   string
	Status Status
}
