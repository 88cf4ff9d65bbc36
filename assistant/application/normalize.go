package application

import "strings"

func isQuote(b byte) bool { return b == '"' || b == '\'' }

// NormalizeReply apara espaços e remove uma aspa no início e uma no fim, se houver
// (o modelo às vezes devolve a resposta inteira entre aspas).
func NormalizeReply(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 0 && isQuote(s[0]) {
		s = s[1:]
	}
	if len(s) > 0 && isQuote(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}
