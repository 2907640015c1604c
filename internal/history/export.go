package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

type tomlDoc struct {
	Records []map[string]any `toml:"record"`
}

// Export writes records in the named format. JSON output is exactly what the
// durable mirror holds.
func Export(w io.Writer, records []Record, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		data, err := EncodeJSON(records)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = w.Write(buf.Bytes())
		return err
	case FormatTOML:
		doc := tomlDoc{Records: make([]map[string]any, 0, len(records))}
		for _, r := range records {
			doc.Records = append(doc.Records, tomlRecord(r))
		}
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// tomlRecord flattens a record for TOML, which has no null.
func tomlRecord(r Record) map[string]any {
	m := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		if v == nil {
			continue
		}
		m[k] = v
	}
	m[fieldID] = r.ID
	m[fieldTimestamp] = r.Timestamp
	return m
}

// Import appends records oldest first so their relative order survives. Each
// one gets a fresh id and timestamp. It stops at the first hard failure;
// ErrNotPersisted is collected and returned at the end.
func (s *Store) Import(ctx context.Context, records []Record) (int, error) {
	var soft error
	n := 0
	for i := len(records) - 1; i >= 0; i-- {
		if _, err := s.Restore(records[i]); err != nil {
			continue
		}
		_, err := s.Append(ctx, records[i].Fields)
		switch {
		case errors.Is(err, ErrNotPersisted):
			soft = err
		case err != nil:
			return n, err
		}
		n++
	}
	return n, soft
}
