package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/calcdeck/internal/app"
	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/config"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/storage"
)

func newContainer(t *testing.T) *app.Container {
	t.Helper()
	c, err := app.NewContainer(context.Background(), config.Default(), storage.NewMemory())
	require.NoError(t, err)
	return c
}

func run(t *testing.T, c *app.Container, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(context.Background(), c)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestEvalPrintsStepsAndSaves(t *testing.T) {
	c := newContainer(t)
	out, _, err := run(t, c, "eval", "2", "+", "3", "*", "4")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "2 + 3 * 4 = 14\n"), out)
	require.Contains(t, out, "3 * 4 = 12")
	require.Contains(t, out, "Result: 14")
	require.Equal(t, 1, c.Store.Len())
	require.Equal(t, "14", c.Store.Records()[0].Result())
}

func TestEvalNoSaveAndAns(t *testing.T) {
	c := newContainer(t)
	_, _, err := run(t, c, "eval", "--no-save", "1 + 1")
	require.NoError(t, err)
	require.Equal(t, 0, c.Store.Len())

	_, _, err = run(t, c, "eval", "6 * 7")
	require.NoError(t, err)
	out, _, err := run(t, c, "eval", "ans + 1")
	require.NoError(t, err)
	require.Contains(t, out, "ans + 1 = 43")
}

func TestEvalNamedOperationAndDegrees(t *testing.T) {
	c := newContainer(t)
	out, _, err := run(t, c, "eval", "mul", "4", "5")
	require.NoError(t, err)
	require.Contains(t, out, "4 * 5 = 20")
	require.Equal(t, "mul", c.Store.Records()[0].String("op"))

	out, _, err = run(t, c, "eval", "--deg", "sin(30)")
	require.NoError(t, err)
	require.Contains(t, out, "sin(30) = 0.5")
}

func TestEvalError(t *testing.T) {
	c := newContainer(t)
	_, _, err := run(t, c, "eval", "1/0")
	require.True(t, calc.IsKind(err, calc.KindDivByZero))
	require.Equal(t, 0, c.Store.Len())
}

func TestIntegrate(t *testing.T) {
	c := newContainer(t)
	out, _, err := run(t, c, "integrate", "x^2", "--from", "0", "--to", "3")
	require.NoError(t, err)
	require.Contains(t, out, "∫[0, 3] x^2 dx = 9")
	require.Contains(t, out, "x^3 / 3")

	rec := c.Store.Records()[0]
	require.Equal(t, history.KindIntegral, rec.Kind())
	require.Equal(t, "simpson", rec.String("method"))

	out, _, err = run(t, c, "integrate", "cos(2t)", "--var", "t", "--no-save")
	require.NoError(t, err)
	require.Contains(t, out, "sin(2 * t) / 2 + C")
	require.Equal(t, 1, c.Store.Len())

	_, _, err = run(t, c, "integrate", "x", "--from", "0")
	require.ErrorContains(t, err, "both --from and --to")

	out, _, err = run(t, c, "integrate", "x", "--from", "0", "--to", "2", "--method", "trapezoid", "--n", "10")
	require.NoError(t, err)
	require.Contains(t, out, "trapezoidal rule with n = 10")
}

func TestHistoryListSearchClear(t *testing.T) {
	c := newContainer(t)
	out, _, err := run(t, c, "history", "list")
	require.NoError(t, err)
	require.Equal(t, msgNoHistory+"\n", out)

	for _, expr := range []string{"sqrt(16)", "2 + 2", "3 * 3"} {
		_, _, err := run(t, c, "eval", expr)
		require.NoError(t, err)
	}

	out, _, err = run(t, c, "history", "list", "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "3 * 3 = 9")
	require.Contains(t, lines[1], "2 + 2 = 4")

	out, _, err = run(t, c, "history", "search", "sqrt")
	require.NoError(t, err)
	require.Contains(t, out, "sqrt(16) = 4")
	require.NotContains(t, out, "2 + 2")

	out, _, err = run(t, c, "history", "clear")
	require.NoError(t, err)
	require.Equal(t, "Cleared 3 calculations.\n", out)
	require.Equal(t, 0, c.Store.Len())
}

func TestHistoryExportImport(t *testing.T) {
	c := newContainer(t)
	for _, expr := range []string{"1 + 1", "2 + 2"} {
		_, _, err := run(t, c, "eval", expr)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "history.json")
	_, errOut, err := run(t, c, "history", "export", "--out", path)
	require.NoError(t, err)
	require.Contains(t, errOut, "Exported 2 records")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := history.DecodeJSON(data)
	require.NoError(t, err)
	require.Equal(t, c.Store.Records(), records)

	out, _, err := run(t, c, "history", "export", "--format", "toml")
	require.NoError(t, err)
	require.Contains(t, out, "[[record]]")

	fresh := newContainer(t)
	out, _, err = run(t, fresh, "history", "import", path)
	require.NoError(t, err)
	require.Equal(t, "Imported 2 of 2 records.\n", out)
	got := fresh.Store.Records()
	require.Len(t, got, 2)
	require.Equal(t, "2 + 2", got[0].Expression())
	require.Equal(t, "1 + 1", got[1].Expression())

	_, _, err = run(t, c, "history", "export", "--format", "yaml")
	require.ErrorContains(t, err, "unknown export format")
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return f.closeErr
}

func TestExportReportsCloseError(t *testing.T) {
	records := []history.Record{}
	w := &failingCloser{closeErr: errors.New("short write on flush")}
	err := exportTo(w, records, history.FormatJSON)
	require.ErrorContains(t, err, "short write on flush")
	require.True(t, w.closed)

	w = &failingCloser{}
	require.NoError(t, exportTo(w, records, history.FormatJSON))
	require.Equal(t, "[]\n", w.String())

	w = &failingCloser{}
	require.ErrorContains(t, exportTo(w, records, "yaml"), "unknown export format")
	require.True(t, w.closed, "closed even when encoding fails")
}

func TestHistoryExportToFileFailureLeavesNoFile(t *testing.T) {
	c := newContainer(t)
	path := filepath.Join(t.TempDir(), "history.yaml")
	_, _, err := run(t, c, "history", "export", "--format", "yaml", "--out", path)
	require.ErrorContains(t, err, "unknown export format")
	require.NoFileExists(t, path)
}

func TestHistoryImportBrowserArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculatorHistory.json")
	data := `[
  {"id": 1767225600002, "timestamp": "2026-01-01T00:00:00.002Z", "type": "integral", "expression": "x^2", "result": 9, "lower": 0, "upper": 3},
  {"id": 1767225600001, "timestamp": "2026-01-01T00:00:00.001Z", "type": "simple", "expression": "2+3", "result": 5},
  {"id": 1767225600000, "timestamp": "2026-01-01T00:00:00.000Z", "type": "matrix", "expression": "det(A)", "result": 1}
]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c := newContainer(t)
	out, _, err := run(t, c, "history", "import", path)
	require.NoError(t, err)
	require.Equal(t, "Imported 2 of 3 records.\n", out)
	got := c.Store.Records()
	require.Equal(t, history.KindIntegral, got[0].Kind())
	require.Equal(t, history.KindSimple, got[1].Kind())

	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
	_, _, err = run(t, c, "history", "import", path)
	require.ErrorIs(t, err, history.ErrMalformed)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calcdeck", "config.toml")
	t.Setenv("CALCDECK_CONFIG", path)
	c := newContainer(t)

	out, _, err := run(t, c, "config", "path")
	require.NoError(t, err)
	require.Equal(t, path+"\n", out)

	_, _, err = run(t, c, "config", "init")
	require.NoError(t, err)
	require.FileExists(t, path)

	_, _, err = run(t, c, "config", "init")
	require.ErrorContains(t, err, "already exists")
	_, _, err = run(t, c, "config", "init", "--force")
	require.NoError(t, err)

	out, _, err = run(t, c, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "storage.key               = calculatorHistory")
	require.Contains(t, out, "history.capacity          = 50")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := run(t, newContainer(t), "frobnicate")
	require.Error(t, err)
}
