// Package field provides typed accessors over the semi-structured maps that
// come back from LLM extraction and from the record store. Model output does
// not guarantee shape, so every read returns a usable value on absence or
// type mismatch instead of failing.
package field

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NotProvided is the sentinel the extraction prompt uses for missing string
// fields. It is distinct from the empty string.
const NotProvided = "not provided"

// Map is a generic key/value tree, typically decoded from model JSON or a
// stored summary document.
type Map map[string]any

// From coerces an arbitrary decoded value into a Map. Anything that is not a
// string-keyed map yields an empty Map.
func From(v any) Map {
	switch m := v.(type) {
	case Map:
		return m
	case map[string]any:
		return Map(m)
	}
	return Map{}
}

// Child returns the nested Map at key, or an empty Map when the key is
// missing or holds a non-map value. Reads on the result degrade the same way.
func (m Map) Child(key string) Map {
	if m == nil {
		return Map{}
	}
	return From(m[key])
}

// Str returns the string at key, or the empty string when the key is missing
// or holds a non-string value.
func (m Map) Str(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// StrOr is Str with an explicit fallback for missing/empty values.
func (m Map) StrOr(key, fallback string) string {
	if s := strings.TrimSpace(m.Str(key)); s != "" {
		return s
	}
	return fallback
}

// Float returns the numeric value at key. The second return reports whether
// a usable number was present: numerics of any width count, as do strings
// that parse as numbers. Everything else is (0, false).
func (m Map) Float(key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return AsFloat(m[key])
}

// List returns the slice at key, or nil when missing or not a slice.
func (m Map) List(key string) []any {
	if m == nil {
		return nil
	}
	l, _ := m[key].([]any)
	return l
}

// Has reports whether key is present at all, regardless of its type.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// AsFloat coerces a dynamically typed value to float64. Stored records round
// numbers through BSON and JSON, so integer widths and json.Number both show
// up here.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
