package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout matches JavaScript's Date.prototype.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record kinds written by the calculator panels under the "type" field.
const (
	KindSimple   = "simple"
	KindIntegral = "integral"
)

const (
	fieldID        = "id"
	fieldTimestamp = "timestamp"
	fieldType      = "type"
)

// Record is one stored calculation: panel-supplied fields plus the id and
// timestamp added on append. It serializes as a single flat JSON object.
type Record struct {
	ID        int64
	Timestamp string
	Fields    map[string]any
}

// Kind returns the "type" field, or "" when missing.
func (r Record) Kind() string { return r.String(fieldType) }

func (r Record) Expression() string { return r.String("expression") }

// Result renders the "result" field as text whatever its stored type.
func (r Record) Result() string {
	v, ok := r.Fields["result"]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// String returns a string field, or "" when missing or not a string.
func (r Record) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Float returns a numeric field.
func (r Record) Float(key string) (float64, bool) {
	switch t := r.Fields[key].(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// Steps returns the explanation steps, skipping non-string entries.
func (r Record) Steps() []string {
	raw, ok := r.Fields["steps"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if str, ok := s.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Time parses Timestamp; the zero time is returned when it is malformed.
func (r Record) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// MarshalJSON writes the fields with id and timestamp merged in; the shell
// fields win over panel fields of the same name.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		m[k] = v
	}
	m[fieldTimestamp] = r.Timestamp
	m[fieldID] = r.ID
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("record: not an object")
	}
	out := Record{Fields: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case fieldID:
			id, err := toInt64(v)
			if err != nil {
				return fmt.Errorf("record id: %w", err)
			}
			out.ID = id
		case fieldTimestamp:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("record timestamp: want string, got %T", v)
			}
			out.Timestamp = s
		default:
			out.Fields[k] = normalizeValue(v)
		}
	}
	*r = out
	return nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}

// normalizeValue maps decoded JSON numbers to int64 when integral and float64
// otherwise, recursively.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalizeValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// normalizeFields deep-copies fields through JSON so the in-memory record is
// exactly what storage will decode later.
func normalizeFields(fields map[string]any) (map[string]any, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("fields not serializable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == fieldID || k == fieldTimestamp {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out, nil
}
