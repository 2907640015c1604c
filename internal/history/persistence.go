package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jask/calcdeck/internal/storage"
)

// Persistence is the durable mirror of the history sequence.
type Persistence interface {
	// Load returns nil for an absent key and an error wrapping ErrMalformed
	// for content that does not decode.
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
	// Clear removes the durable entry entirely.
	Clear(ctx context.Context) error
}

// KeyedPersistence stores the sequence as one JSON array under a fixed key.
type KeyedPersistence struct {
	kv  storage.KV
	key string
}

func NewKeyedPersistence(kv storage.KV, key string) *KeyedPersistence {
	return &KeyedPersistence{kv: kv, key: key}
}

// Load reports nil, nil when the key is absent.
func (p *KeyedPersistence) Load(ctx context.Context) ([]Record, error) {
	raw, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return DecodeJSON([]byte(raw))
}

func (p *KeyedPersistence) Save(ctx context.Context, records []Record) error {
	data, err := EncodeJSON(records)
	if err != nil {
		return err
	}
	return p.kv.Set(ctx, p.key, string(data))
}

func (p *KeyedPersistence) Clear(ctx context.Context) error {
	return p.kv.Remove(ctx, p.key)
}

// EncodeJSON serializes records as a JSON array, most recent first.
func EncodeJSON(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

// DecodeJSON parses a JSON array of records. "null" and whitespace decode to
// an empty sequence.
func DecodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []Record
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return out, nil
}

// Errors reported by the store and its persistence.
var (
	ErrMalformed     = errors.New("history: malformed durable content")
	ErrNotPersisted  = errors.New("history: change kept in memory but not persisted")
	ErrPersistFailed = errors.New("history: persist failed, change rolled back")
	ErrUnknownKind   = errors.New("history: record has no restorable kind")
)

var _ Persistence = (*KeyedPersistence)(nil)
