package insights

import (
	"time"

	"combell-mcp/internal/combell"
)

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

// firstText returns the first string value among keys, or def.
func firstText(rec combell.Record, def string, keys ...string) string {
	if s, ok := firstPresent(rec, keys...); ok {
		return s
	}
	return def
}

// firstPresent returns the first key holding a string value. The API uses
// snake_case while some exports use camelCase.
func firstPresent(rec combell.Record, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := rec.Text(k); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
