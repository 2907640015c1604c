package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jask/calcdeck/internal/config"
	"github.com/jask/calcdeck/internal/database"
)

// Opened is a backend plus whatever must be closed when done.
type Opened struct {
	KV    KV
	db    *sql.DB
	Label string
	// Schema is the applied migration version, zero for non-SQL backends.
	Schema uint
}

// Close releases the database handle, if any.
func (o Opened) Close() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}

// Open builds the backend named by cfg.Backend. The sqlite backend runs
// migrations before opening.
func Open(cfg config.StorageConfig) (Opened, error) {
	switch cfg.Backend {
	case "memory":
		return Opened{KV: NewMemory(), Label: "memory"}, nil
	case "file":
		return Opened{KV: NewFile(cfg.Dir), Label: "file:" + cfg.Dir}, nil
	case "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return Opened{}, fmt.Errorf("mkdir db dir: %w", err)
		}
		if err := database.RunMigrations(cfg.Path); err != nil {
			return Opened{}, fmt.Errorf("migrate: %w", err)
		}
		version, dirty, err := database.SchemaVersion(cfg.Path)
		if err != nil {
			return Opened{}, fmt.Errorf("schema version: %w", err)
		}
		if dirty {
			return Opened{}, fmt.Errorf("schema version %d is dirty; a migration failed part way", version)
		}
		db, err := database.Open(cfg.Path)
		if err != nil {
			return Opened{}, fmt.Errorf("open db: %w", err)
		}
		return Opened{KV: NewSQLite(db), db: db, Label: "sqlite:" + cfg.Path, Schema: version}, nil
	default:
		return Opened{}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
