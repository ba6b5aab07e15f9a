// Package logging opens the zerolog file logger. The terminal belongs to the
// TUI, so nothing is ever written to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// DefaultFile is ~/.zavaflow/logs/zavaflow_<date>.log.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	name := fmt.Sprintf("zavaflow_%s.log", time.Now().Format("2006-01-02"))
	return filepath.Join(home, ".zavaflow", "logs", name)
}

// New returns a logger appending to path. An empty path disables logging.
func New(path, level string) (zerolog.Logger, io.Closer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewWriter(file, lvl), file, nil
}

// NewWriter builds the logger used by every package on top of w.
func NewWriter(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// ParseLevel accepts debug, info, warn and error. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zerolog.InfoLevel, nil
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
