// Package logging builds the zerolog loggers used across idhue.
//
// Loggers travel in a context.Context; components pick theirs up with
// zerolog.Ctx and add a "component" field.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum level to output.
	Level string
	// Output is where logs are written when File is empty. Defaults to
	// os.Stderr.
	Output io.Writer
	// File, when set, receives the logs instead of Output. The terminal
	// viewer owns the screen, so it logs to a file.
	File string
	// Console selects human-readable output instead of JSON.
	Console bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Output:  os.Stderr,
		Console: true,
	}
}

// ParseLevel parses a level name. Unknown names yield info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger from cfg. The returned closer releases the log file,
// if one was opened; it is never nil.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	var (
		out    = cfg.Output
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, errors.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	}
	if out == nil {
		out = os.Stderr
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: cfg.File != ""}
	}

	logger := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// WithComponent tags a logger with a component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// FromContext returns the context logger tagged with component. Contexts
// without a logger yield a disabled one.
func FromContext(ctx context.Context, component string) zerolog.Logger {
	return WithComponent(*zerolog.Ctx(ctx), component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
