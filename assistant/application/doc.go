// Package application implementa o pipeline do assistente (Gateway) e o repasse de
// áudio (TTSRelay), sem conhecer HTTP nem os clientes concretos de Gemini/Murf.
package application
