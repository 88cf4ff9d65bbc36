package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// GooseLogger adapta o zerolog para a interface de logger do goose.
type GooseLogger struct {
	logger *zerolog.Logger
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msgf(format, v...)
}

func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug().Msgf(format, v...)
}

func NewGooseLogger(ctx context.Context) *GooseLogger {
	return &GooseLogger{logger: FromCtx(ctx)}
}
