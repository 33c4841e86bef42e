package combell

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is one schema-less upstream object. Fields the code does not know
// about are carried through untouched.
//
// The accessors never fail: an absent key or a value of the wrong type gives
// the zero value and ok=false.
type Record map[string]any

// Has reports whether key is present and not null.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Text returns a string field. Numbers are formatted.
func (r Record) Text(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// TextOr returns the string field or def.
func (r Record) TextOr(key, def string) string {
	if s, ok := r.Text(key); ok {
		return s
	}
	return def
}

// Bool returns a boolean field.
func (r Record) Bool(key string) (bool, bool) {
	switch v := r[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// BoolOr returns the boolean field or def.
func (r Record) BoolOr(key string, def bool) bool {
	if b, ok := r.Bool(key); ok {
		return b
	}
	return def
}

// Float returns a numeric field.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns a numeric field truncated to an int.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	return int(f), ok
}

// List returns the string elements of an array field. Non-string elements
// are skipped.
func (r Record) List(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Time parses a date or timestamp field.
func (r Record) Time(key string) (time.Time, bool) {
	s, ok := r[key].(string)
	if !ok {
		return time.Time{}, false
	}
	return ParseTime(s)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the date formats the Combell API returns. Values without
// a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
