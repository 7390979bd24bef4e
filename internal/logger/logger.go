package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger creates a new zerolog logger with console output
func NewLogger() zerolog.Logger {
	return newLogger(os.Stderr)
}

// NewLoggerWithLevel creates a new logger with a level name such as "debug" or "warn".
// Unknown names fall back to info.
func NewLoggerWithLevel(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger := NewLogger()
	return logger.Level(lvl)
}

func newLogger(out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	return log.Output(output).With().Timestamp().Logger()
}
