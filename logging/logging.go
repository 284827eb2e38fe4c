// Package logging configures the global zerolog logger. Logs go to stderr so they never
// mix with protocol output on stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-bot/config"
)

// New builds a logger writing to w in the configured style.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("%w: LOG_LEVEL %q", config.ErrInvalidConfig, cfg.Level)
		}
		level = l
	}

	switch cfg.Style {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("%w: LOG_STYLE %q", config.ErrInvalidConfig, cfg.Style)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Setup installs the configured logger as the global one.
func Setup(cfg config.LogConfig) error {
	logger, err := New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	log.Logger = logger
	zerolog.SetGlobalLevel(logger.GetLevel())
	return nil
}
