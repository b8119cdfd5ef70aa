// Package logging builds the zerolog logger used across the server.
//
//	logger, err := logging.Setup(logging.Options{Level: "debug", Format: "console"})
//	logger.Info().Str("addr", ":8080").Msg("listening")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the logger is built.
type Options struct {
	Level  string    // "debug", "info", "warn", "error" (default: "info")
	Format string    // "console" or "json" (default: "json")
	Output io.Writer // default: os.Stdout
}

// ParseLevel converts a level name to a zerolog.Level.
// Unrecognised values map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LevelNames lists the accepted level names.
func LevelNames() string {
	return "trace, debug, info, warn, error"
}

// Validate returns an error if level is not a recognised name.
func Validate(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "":
		return nil
	default:
		return fmt.Errorf("unknown log level %q (valid: %s)", level, LevelNames())
	}
}

// Setup returns a timestamped logger writing to opts.Output.
func Setup(opts Options) (zerolog.Logger, error) {
	if err := Validate(opts.Level); err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "console", "text":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json", "":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (valid: console, json)", opts.Format)
	}

	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger(), nil
}
