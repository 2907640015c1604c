package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/calcdeck/internal/database/repository"
)

// SQLite stores values in the kv_store table.
type SQLite struct {
	repo *repository.KVRepo
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{repo: repository.NewKVRepo(db)}
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	e, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	if e == nil {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.repo.Put(ctx, key, value); err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("sqlite remove %s: %w", key, err)
	}
	return nil
}

var _ KV = (*SQLite)(nil)
