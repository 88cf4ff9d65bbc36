package domain

import (
	"context"
	"time"
)

type Category string

const (
	CategoryGeneral Category = "general"
	CategoryWeather Category = "weather"
	CategoryCrop    Category = "crop"
	CategoryPest    Category = "pest"
	CategorySoil    Category = "soil"
	CategoryMarket  Category = "market"
)

type ChatLogEntry struct {
	ID           string
	ClientKey    string
	LanguageMode LanguageMode
	UserMessage  string
	BotResponse  string
	Category     Category
	CreatedAt    time.Time
}

// ChatLogStore é o store relacional das conversas.
type ChatLogStore interface {
	Save(ctx context.Context, e ChatLogEntry) error
	Recent(ctx context.Context, clientKey string, limit int) ([]ChatLogEntry, error)
}

// ChatLogSink recebe entradas sem bloquear quem chama; perdas são aceitáveis.
type ChatLogSink interface {
	Enqueue(e ChatLogEntry) bool
}
