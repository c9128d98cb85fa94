// Package logging builds the zerolog loggers used by the casino server and
// casinoctl.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains logging configuration
type Config struct {
	Level   string
	Format  string
	Output  string
	NoColor bool

	// Writer overrides Output when set
	Writer io.Writer
}

// ApplyDefaults applies default values to logging configuration
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// New creates a logger from cfg. Log files are opened for appending and stay
// open for the life of the process.
func New(cfg Config) (zerolog.Logger, error) {
	cfg.ApplyDefaults()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	out := cfg.Writer
	if out == nil {
		out, err = outputWriter(cfg.Output)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: cfg.NoColor}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "casino").Logger(), nil
}

func outputWriter(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, nil
	}
}
