// Package logging builds the slog logger used across nlq. The console owns the
// terminal, so logs go to a file or nowhere.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/diogo/nlq/internal/models"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewLogger returns a text logger writing to writer. verbose lowers the level
// to debug, where request lifecycle events are logged.
func NewLogger(writer io.Writer, verbose bool) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		slog.String("app", "nlq"),
		slog.String("version", models.ClientVersion),
	)
}

// Open returns a logger appending to path. An empty path yields a discard
// logger. The returned closer releases the log file.
func Open(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return Discard(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f, verbose), f, nil
}
