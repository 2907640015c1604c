// Package storage holds the durable key/value backends that mirror the
// history sequence across sessions. A key maps to one serialized value;
// removing a key leaves it absent rather than empty.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// KV is a durable string key/value store.
type KV interface {
	// Get reports ok=false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys a backend cannot address.
var ErrInvalidKey = errors.New("storage: invalid key")

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
