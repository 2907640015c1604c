package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/calcdeck/internal/config"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	opened, err := Open(config.StorageConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = opened.Close() })
	return map[string]KV{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "store")),
		"sqlite": opened.KV,
	}
}

func TestBackendsContract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "calculatorHistory")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, kv.Set(ctx, "calculatorHistory", "[]"))
			require.NoError(t, kv.Set(ctx, "calculatorHistory", `[{"id":1}]`))
			v, ok, err := kv.Get(ctx, "calculatorHistory")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `[{"id":1}]`, v)

			require.NoError(t, kv.Remove(ctx, "calculatorHistory"))
			_, ok, err = kv.Get(ctx, "calculatorHistory")
			require.NoError(t, err)
			require.False(t, ok, "removed key is absent, not empty")

			require.NoError(t, kv.Remove(ctx, "calculatorHistory"))
		})
	}
}

func TestBackendsRejectBadKeys(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "  ", "../escape", `a\b`, ".."} {
				err := kv.Set(ctx, key, "x")
				require.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	f := NewFile(dir)
	require.NoError(t, f.Set(context.Background(), "calculatorHistory", "[]"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "calculatorHistory.json", entries[0].Name())
}

func TestFileRespectsCancelledContext(t *testing.T) {
	f := NewFile(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, f.Set(ctx, "k", "v"), context.Canceled)
}

func TestMemoryFailureHooks(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	quota := errors.New("quota exceeded")
	m.FailSet = func(_ string, attempt int) error {
		if attempt == 1 {
			return quota
		}
		return nil
	}
	require.ErrorIs(t, m.Set(ctx, "k", "v"), quota)
	_, ok, _ := m.Get(ctx, "k")
	require.False(t, ok)
	require.NoError(t, m.Set(ctx, "k", "v"))
	require.Equal(t, 2, m.SetCalls())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.StorageConfig{Backend: "redis"})
	require.Error(t, err)
}

func TestOpenReportsSchemaVersion(t *testing.T) {
	opened, err := Open(config.StorageConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "nested", "kv.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = opened.Close() })
	require.Equal(t, uint(1), opened.Schema)

	mem, err := Open(config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	require.Zero(t, mem.Schema)
	require.NoError(t, mem.Close())
}
