// Package telemetry builds the dashboard's logger and optional New Relic application.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/akavelog-dash/internal/config"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NewLogger returns a zerolog logger for cfg and the closer of its sink.
// With interactive set (the terminal UI owns stdout and stderr) logs go to
// cfg.Logging.File, or nowhere when it is empty. Otherwise they go to stderr
// through a console writer.
func NewLogger(cfg *config.ObservabilityConfig, interactive bool) (zerolog.Logger, io.Closer, error) {
	if cfg == nil {
		cfg = config.DefaultObservabilityConfig()
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
	}

	var out io.WriteCloser = nopCloser{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}}
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	case interactive:
		out = nopCloser{io.Discard}
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("env", cfg.Environment).
		Logger()
	return logger, out, nil
}
