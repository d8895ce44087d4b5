package validator

import (
	"encoding/json"
	"fmt"

	"call-audit-go/internal/extractor"
	"call-audit-go/internal/field"
)

// decodeEvaluation parses the scoring verdict with the same tolerant
// brace-extraction used for every model output.
func decodeEvaluation(raw string) (evaluation, error) {
	sub, ok := extractor.ExtractJSON(raw)
	if !ok {
		return evaluation{}, fmt.Errorf("no JSON object in evaluation output")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(sub), &m); err != nil {
		return evaluation{}, err
	}
	verdict := field.From(m)

	score, _ := verdict.Float("score")
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return evaluation{
		score:        score,
		improvements: stringList(verdict.List("improvements")),
		strengths:    stringList(verdict.List("strengths")),
	}, nil
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
