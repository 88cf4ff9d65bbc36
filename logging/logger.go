// Package logging configura o zerolog global e o transporta pelo context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Debug bool
	// JSON troca o ConsoleWriter por linhas JSON (para coletores de log).
	JSON bool
	Out  io.Writer
}

// NewContextWithLogger instala o logger global e devolve um ctx que o carrega.
// A função retornada fecha o writer não bloqueante (diode) e deve ser chamada no shutdown.
func NewContextWithLogger(ctx context.Context, opts Options) (context.Context, func()) {
	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	// ring buffer de 1000 mensagens, poll a cada 10ms
	wr := diode.NewWriter(opts.Out, 1000, 10*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})

	var out io.Writer = wr
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        wr,
			TimeFormat: time.DateTime,
			PartsOrder: []string{
				zerolog.LevelFieldName,
				zerolog.TimestampFieldName,
				zerolog.MessageFieldName,
			},
		}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger.WithContext(ctx), func() {
		_ = wr.Close()
	}
}

// FromCtx devolve o logger do ctx; sem logger, um logger desabilitado.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
