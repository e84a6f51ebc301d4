// Package logging builds the zerolog loggers used by the library and CLI.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config contains logger configuration.
type Config struct {
	// Level sets the logging level (trace, debug, info, warn, error).
	Level string
	// Pretty enables human-readable console output.
	Pretty bool
	// Output sets the output writer (defaults to os.Stderr).
	Output io.Writer
}

// DefaultConfig returns the configuration behind the debug switch: debug
// level, console format, stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "debug",
		Pretty: true,
		Output: os.Stderr,
	}
}

// New creates a new zerolog logger with the given configuration.
// Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewWithComponent creates a logger with a component field for structured logging.
func NewWithComponent(cfg Config, component string) zerolog.Logger {
	return New(cfg).With().Str("component", component).Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
