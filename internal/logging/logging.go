// Package logging builds the zerolog loggers used by the CLI, daemon and TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const timeFormat = "15:04:05"

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
	}).Level(lvl).With().Timestamp().Logger()
	return logger, err
}

// Stderr is the CLI and daemon logger. It also becomes the global logger so
// packages logging through zerolog/log share the same output.
func Stderr(level string) zerolog.Logger {
	logger, err := New(os.Stderr, level)
	if err != nil {
		logger.Warn().Err(err).Msg("falling back to info level")
	}
	log.Logger = logger
	return logger
}

// DefaultFilePath is where the TUI logs when no file is configured.
func DefaultFilePath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "svcboard", "svcboard.log")
	}
	return filepath.Join(os.TempDir(), "svcboard.log")
}

// File opens path for appending and returns a logger that writes plain
// (uncolored) console lines to it. The closer releases the file.
func File(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		path = DefaultFilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	lvl, lerr := ParseLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: timeFormat,
		NoColor:    true,
	}).Level(lvl).With().Timestamp().Logger()
	if lerr != nil {
		logger.Warn().Err(lerr).Msg("falling back to info level")
	}
	log.Logger = logger
	return logger, f, nil
}
