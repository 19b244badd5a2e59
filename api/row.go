package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Row is one flat result row from the query endpoint. Accessors propagate
// missing and null columns as "no value" rather than zero values; factories
// must never force-cast an absent optional date or number.
type Row map[string]any

// Has reports whether the column exists and is non-null.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the column as a string, or "" when absent or null.
func (r Row) String(key string) string {
	s, _ := r.OptString(key)
	return s
}

// OptString returns the column as a string with presence information.
func (r Row) OptString(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// Int64 returns the column as an int64, or 0 when absent or unparseable.
func (r Row) Int64(key string) int64 {
	n, _ := r.OptInt64(key)
	return n
}

// OptInt64 returns the column as an int64 with presence information.
// Numeric columns arrive as JSON numbers or as decimal strings.
func (r Row) OptInt64(key string) (int64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Bool returns the column as a bool. The tenant encodes booleans as JSON
// true/false or as the strings "True"/"False"; anything else is false.
func (r Row) Bool(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	}
	return false
}

// wcfPrefix marks the tenant's legacy /Date(ms)/ timestamp encoding.
const wcfPrefix = "/Date("

// OptTime returns the column as a time with presence information.
// Dates arrive either as RFC 3339 strings or in the legacy "/Date(ms)/"
// encoding; an absent or unparseable value is "no value", never a zero date.
func (r Row) OptTime(key string) (time.Time, bool) {
	s, ok := r.OptString(key)
	if !ok || s == "" {
		return time.Time{}, false
	}

	if strings.HasPrefix(s, wcfPrefix) {
		ms := strings.TrimSuffix(strings.TrimPrefix(s, wcfPrefix), ")/")
		n, err := strconv.ParseInt(ms, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(n).UTC(), true
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "1/2/2006 3:04:05 PM", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
