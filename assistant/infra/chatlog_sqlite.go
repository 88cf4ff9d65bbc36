package infra

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"kisan-gateway/assistant/domain"
	"kisan-gateway/logging"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const DefaultRecentLimit = 50

// OpenChatLogDB abre (ou cria) o banco SQLite e aplica as migrations.
func OpenChatLogDB(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(logging.NewGooseLogger(ctx))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}

type SQLiteChatLog struct {
	db *sql.DB
}

var _ domain.ChatLogStore = (*SQLiteChatLog)(nil)

func NewSQLiteChatLog(db *sql.DB) *SQLiteChatLog {
	return &SQLiteChatLog{db: db}
}

func (s *SQLiteChatLog) Save(ctx context.Context, e domain.ChatLogEntry) error {
	query := `INSERT INTO chat_history (id, client_key, lang_mode, user_message, bot_response, category, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.ClientKey, string(e.LanguageMode), e.UserMessage, e.BotResponse, string(e.Category), e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert chat log: %w", err)
	}
	return nil
}

// Recent devolve as últimas conversas, da mais nova para a mais antiga.
// clientKey vazio lista todos os clientes.
func (s *SQLiteChatLog) Recent(ctx context.Context, clientKey string, limit int) ([]domain.ChatLogEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `SELECT id, client_key, lang_mode, user_message, bot_response, category, created_at
		FROM chat_history WHERE (? = '' OR client_key = ?) ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, clientKey, clientKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat log: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatLogEntry
	for rows.Next() {
		var (
			e              domain.ChatLogEntry
			lang, category string
			createdAt      time.Time
		)
		if err := rows.Scan(&e.ID, &e.ClientKey, &lang, &e.UserMessage, &e.BotResponse, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		e.LanguageMode = domain.LanguageMode(lang)
		e.Category = domain.Category(category)
		e.CreatedAt = createdAt
		out = append(out, e)
	}
	return out, rows.Err()
}
