package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"call-audit-go/internal/field"
)

// ParseError carries the model's raw text so a failed extraction can be
// diagnosed after the fact.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractJSON cuts the substring between the first '{' and the last '}' in
// the model's text. Models wrap JSON in prose and markdown fences despite
// instructions; this heuristic tolerates both. It is deliberately greedy:
// two JSON-ish substrings in one response are captured as one span, and that
// is the documented behavior, not something to fix here.
func ExtractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// decodeObject runs ExtractJSON and unmarshals the result into a Map.
func decodeObject(raw string) (field.Map, error) {
	sub, ok := ExtractJSON(raw)
	if !ok {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no JSON object in output")}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(sub), &m); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return field.Map(m), nil
}
