// Package app builds the long-lived dependencies shared by the CLI and the TUI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jask/calcdeck/internal/config"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/observability"
	"github.com/jask/calcdeck/internal/storage"
)

// Options tune BuildContainer.
type Options struct {
	// Verbose sends human-readable logs to Stderr instead of the log file.
	Verbose bool
	Stderr  io.Writer
}

// Container holds the configured history store and its backing storage.
type Container struct {
	Config   config.Config
	Store    *history.Store
	Storage  string // backend label, e.g. "sqlite:/path"
	Log      *slog.Logger
	Location *time.Location

	session      string
	closeStorage func() error
}

// BuildContainer loads config, sets up logging, opens storage and loads the
// history.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		observability.SetupText(w, "debug")
	} else if err := observability.Setup(cfg.Log.Path, cfg.Log.Level); err != nil {
		return nil, err
	}

	opened, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	c, err := NewContainer(ctx, cfg, opened.KV)
	if err != nil {
		_ = opened.Close()
		return nil, err
	}
	c.Storage = opened.Label
	c.closeStorage = opened.Close
	c.Log.Info("container ready", "storage", opened.Label, "schema", opened.Schema, "records", c.Store.Len())
	return c, nil
}

// NewContainer wires a history store over kv using cfg.
func NewContainer(ctx context.Context, cfg config.Config, kv storage.KV) (*Container, error) {
	log, session := observability.WithSession()
	store, err := history.New(ctx, history.NewKeyedPersistence(kv, cfg.Storage.Key),
		history.WithCapacity(cfg.History.Capacity),
		history.WithPolicy(history.ParsePolicy(cfg.History.WritePolicy)),
		history.WithRetry(cfg.History.RetryAttempts, 100*time.Millisecond),
		history.WithLogger(log.With("component", "history")),
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if lerr := store.LoadErr(); lerr != nil {
		log.Warn("stored history unreadable, starting empty", "key", cfg.Storage.Key, "err", lerr)
	}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		log.Warn("using local timezone", "timezone", cfg.UI.Timezone, "err", err)
		loc = time.Local
	}
	return &Container{
		Config:   cfg,
		Store:    store,
		Storage:  "custom",
		Log:      log,
		Location: loc,
		session:  session,
	}, nil
}

// Close releases storage and flushes the log file.
func (c *Container) Close() error {
	var err error
	if c.closeStorage != nil {
		err = c.closeStorage()
	}
	if cerr := observability.Close(); err == nil {
		err = cerr
	}
	return err
}
