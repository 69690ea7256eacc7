// Package logger builds the zerolog loggers used by the pipeline.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable that enables logging.
const EnvLevel = "GEMPREP_LOG_LEVEL"

// New returns a logger writing JSON lines to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", "gemprep").
		Logger()
}

// FromEnv returns a console logger on stderr when GEMPREP_LOG_LEVEL is set
// (debug, info, warn, error) and a disabled logger otherwise. Output goes to
// stderr so callers that use stdout for data are not disturbed.
func FromEnv() (zerolog.Logger, error) {
	return fromLookup(os.LookupEnv, os.Stderr)
}

func fromLookup(lookup func(string) (string, bool), w io.Writer) (zerolog.Logger, error) {
	value, ok := lookup(EnvLevel)
	if !ok || value == "" {
		return zerolog.Nop(), nil
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid %s: %w", EnvLevel, err)
	}
	return New(zerolog.ConsoleWriter{Out: w, NoColor: true}, level), nil
}
