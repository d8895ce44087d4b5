// Package normalizer coerces the semi-structured summary a model produces
// into values safe for aggregation. Every function is pure and total:
// malformed input degrades the affected field to a sentinel, never the whole
// record.
package normalizer

import (
	"fmt"
	"math"
	"strings"

	"call-audit-go/internal/field"
)

// SentimentTotal is what the three sentiment scores must sum to after
// rebalancing.
const SentimentTotal = 10.0

// MetricKeys are the four agent performance metrics the extraction prompt
// asks for, in prompt order.
var MetricKeys = []string{"Professionalism", "Product_Knowledge", "Communication_Skills", "Problem_Solving"}

// SafeNumeric converts an arbitrary value to a float. The second return is
// false when nothing numeric could be read; it never panics.
func SafeNumeric(v any) (float64, bool) {
	return field.AsFloat(v)
}

// RebalanceSentiment scales the three sentiment scores so they sum to
// SentimentTotal, rounding each to one decimal. An all-zero triple is left
// untouched; the caller still reports the total as SentimentTotal.
func RebalanceSentiment(pos, neg, neu float64) (float64, float64, float64) {
	sum := pos + neg + neu
	if sum == 0 {
		return pos, neg, neu
	}
	scale := SentimentTotal / sum
	return round1(pos * scale), round1(neg * scale), round1(neu * scale)
}

// RecomputeAgentScore averages whichever of the four metrics are present and
// numeric, rounded half away from zero. No usable metric means 0. The result
// supersedes any score the extraction itself produced.
func RecomputeAgentScore(metrics field.Map) int {
	var sum float64
	var n int
	for _, k := range MetricKeys {
		if v, ok := metrics.Float(k); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// NormalizePhone strips everything that is not a digit and keeps the last 10
// digits when more survive. An empty result becomes the "not provided"
// sentinel rather than an empty string.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if digits == "" {
		return field.NotProvided
	}
	return digits
}

// NormalizeSummary applies all normalizations to a raw summary tree in
// place and returns it. Shapes that do not match are skipped field by field.
func NormalizeSummary(summary field.Map) field.Map {
	if summary == nil {
		return summary
	}

	if summary.Has("Sentiment_Scores") {
		ss := summary.Child("Sentiment_Scores")
		pos, _ := ss.Float("Positive_Sentiment_Score")
		neg, _ := ss.Float("Negative_Sentiment_Score")
		neu, _ := ss.Float("Neutral_Sentiment_Score")
		pos, neg, neu = RebalanceSentiment(pos, neg, neu)
		ss["Positive_Sentiment_Score"] = pos
		ss["Negative_Sentiment_Score"] = neg
		ss["Neutral_Sentiment_Score"] = neu
		// the displayed total is always the target, regardless of rounding drift
		ss["Total_Sentiment_Score"] = SentimentTotal
	}

	summary["score"] = RecomputeAgentScore(summary.Child("Sales_Agent_Score"))

	if summary.Has("Customer") {
		customer := summary.Child("Customer")
		for _, key := range []string{"Contact_Details", "Emergency_Contact_Details"} {
			raw, ok := customer[key]
			if !ok || raw == nil {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				s = fmt.Sprint(raw)
			}
			if strings.EqualFold(strings.TrimSpace(s), field.NotProvided) {
				continue
			}
			customer[key] = NormalizePhone(s)
		}
	}

	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
