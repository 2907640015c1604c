package observability

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestSetupWritesJSONLinesWithSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calcdeck.log")
	require.NoError(t, Setup(path, "debug"))
	t.Cleanup(func() { _ = Close() })

	l, session := WithSession()
	l.Info("history loaded", "count", 3)
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	require.Contains(t, line, `"msg":"history loaded"`)
	require.Contains(t, line, `"session":"`+session+`"`)
	require.Contains(t, line, `"count":3`)
}

func TestSetupTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupText(&buf, "warn")
	t.Cleanup(func() { _ = Close() })

	Logger().Info("quiet")
	WithFields("key", "calculatorHistory").Warn("loud")
	out := buf.String()
	require.False(t, strings.Contains(out, "quiet"))
	require.Contains(t, out, "loud")
	require.Contains(t, out, "key=calculatorHistory")
}
