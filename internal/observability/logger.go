package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	closer io.Closer
)

// Logger returns the process logger. It discards output until Setup is called.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return Logger().With(kv...)
}

// WithSession tags every line with a fresh session id and returns the id.
func WithSession() (*slog.Logger, string) {
	id := uuid.NewString()
	return Logger().With("session", id), id
}

// Setup points the process logger at path as JSON lines. The TUI owns stdout,
// so logs never go there. An empty path or "-" discards.
func Setup(path, level string) error {
	var w io.Writer = io.Discard
	var c io.Closer
	if path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		w, c = f, f
	}
	install(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})), c)
	return nil
}

// SetupText logs human-readable lines to w. Used by the CLI in verbose mode.
func SetupText(w io.Writer, level string) {
	install(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})), nil)
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// ParseLevel maps config strings to slog levels; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func install(l *slog.Logger, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	logger, closer = l, c
}
