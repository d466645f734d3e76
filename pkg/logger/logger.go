package logger

import (
	"io"
	"os"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/rs/zerolog"
)

type Logger struct {
	*zerolog.Logger
}

func New(cfg *config.Config) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg.IsDev {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if cfg.IsDev {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	z := zerolog.New(out).With().Timestamp().Logger()
	return &Logger{Logger: &z}
}

// Nop returns a logger that discards everything, for tests.
func Nop() *Logger {
	z := zerolog.Nop()
	return &Logger{Logger: &z}
}
