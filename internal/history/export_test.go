package history

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/jask/calcdeck/internal/storage"
)

func TestRecordJSONIsFlat(t *testing.T) {
	rec := Record{ID: 1710000000000, Timestamp: "2024-03-09T16:00:00.000Z", Fields: map[string]any{
		"type": KindSimple, "expression": "2+3", "result": int64(5), "id": "shadowed",
	}}
	data, err := rec.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"simple","expression":"2+3","result":5,"id":1710000000000,"timestamp":"2024-03-09T16:00:00.000Z"}`, string(data))
}

func TestDecodeBrowserHistory(t *testing.T) {
	raw := `[
	  {"type":"integral","expression":"x^2","lower":0,"upper":3,"result":9,"steps":["∫ x^2 dx = x^3/3"],"timestamp":"2024-03-09T16:00:01.250Z","id":1710000001250},
	  {"type":"simple","op":"add","a":2,"b":3,"result":5,"timestamp":"2024-03-09T16:00:00.000Z","id":1710000000000}
	]`
	recs, err := DecodeJSON([]byte(raw))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, KindIntegral, recs[0].Kind())
	require.Equal(t, []string{"∫ x^2 dx = x^3/3"}, recs[0].Steps())
	require.Equal(t, int64(1710000001250), recs[0].ID)
	a, ok := recs[1].Float("a")
	require.True(t, ok)
	require.Equal(t, 2.0, a)
	require.Equal(t, "5", recs[1].Result())
}

func TestExportJSONMatchesDurableForm(t *testing.T) {
	recs := []Record{{ID: 2, Timestamp: "2024-03-09T16:00:00.000Z", Fields: map[string]any{"type": KindSimple, "result": 1.5}}}
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, recs, FormatJSON))
	back, err := DecodeJSON(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, recs, back)

	buf.Reset()
	require.NoError(t, Export(&buf, nil, "json"))
	require.Equal(t, "[]\n", buf.String())
}

func TestExportTOML(t *testing.T) {
	recs := []Record{{ID: 7, Timestamp: "2024-03-09T16:00:00.000Z", Fields: map[string]any{
		"type": KindSimple, "expression": "2*3", "result": int64(6), "note": nil,
	}}}
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, recs, FormatTOML))
	require.True(t, strings.Contains(buf.String(), "[[record]]"))

	var doc tomlDoc
	_, err := toml.Decode(buf.String(), &doc)
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	require.Equal(t, "2*3", doc.Records[0]["expression"])
	require.Equal(t, int64(7), doc.Records[0]["id"])
	_, hasNote := doc.Records[0]["note"]
	require.False(t, hasNote)
}

func TestExportUnknownFormat(t *testing.T) {
	require.Error(t, Export(&bytes.Buffer{}, nil, "yaml"))
}

func TestImportAppendsOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())
	recs, err := DecodeJSON([]byte(`[
	  {"type":"simple","expression":"second","result":2,"timestamp":"2024-03-09T16:00:01.000Z","id":2},
	  {"type":"bogus","expression":"skipped","timestamp":"2024-03-09T16:00:00.500Z","id":3},
	  {"type":"simple","expression":"first","result":1,"timestamp":"2024-03-09T16:00:00.000Z","id":1}
	]`))
	require.NoError(t, err)

	n, err := s.Import(ctx, recs)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	got := s.Records()
	require.Equal(t, "second", got[0].Expression())
	require.Equal(t, "first", got[1].Expression())
	require.Greater(t, got[0].ID, got[1].ID)
}
