package repository

import (
	"context"
	"database/sql"
	"errors"
)

// KVRepo handles the kv_store table: one serialized value per key.
type KVRepo struct {
	db *sql.DB
}

func NewKVRepo(db *sql.DB) *KVRepo { return &KVRepo{db: db} }

func (r *KVRepo) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO kv_store(key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

// Get returns nil when the key is absent.
func (r *KVRepo) Get(ctx context.Context, key string) (*KVEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM kv_store WHERE key = ?`, key)
	var e KVEntry
	if err := row.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	return err
}
