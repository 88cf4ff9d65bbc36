// Package infra implementa os colaboradores externos do assistente:
//
//   - GeminiClient (REST) e GenAIClient (SDK google.golang.org/genai) para domain.LLM
//   - MurfClient para domain.Speech
//   - SQLiteChatLog (go-sqlite3 + goose) e ChatLogQueue para o log de conversas
package infra
