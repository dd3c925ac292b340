// Package logger builds the process zerolog logger from config.LogConfig.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"shopbill/internal/config"
)

// New returns a logger writing to w. Format "json" emits JSON lines; anything else
// uses the human-readable console writer.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Setup builds a stdout logger and installs it as the global zerolog logger.
func Setup(cfg config.LogConfig) (zerolog.Logger, error) {
	l, err := New(cfg, os.Stdout)
	if err != nil {
		return l, err
	}
	log.Logger = l
	return l, nil
}

// WithComponent returns a child logger tagged with a component field.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
