package normalizer

import (
	"math"
	"testing"

	"call-audit-go/internal/field"
)

func TestRebalanceSentimentSumsToTarget(t *testing.T) {
	cases := []struct{ pos, neg, neu float64 }{
		{3, 4, 5},
		{1, 1, 1},
		{7, 0, 0},
		{2.5, 2.5, 9},
		{0.1, 0.2, 0.3},
	}
	for _, c := range cases {
		p, n, u := RebalanceSentiment(c.pos, c.neg, c.neu)
		sum := p + n + u
		if math.Abs(sum-SentimentTotal) > 0.1+1e-9 {
			t.Fatalf("rebalance(%v,%v,%v) sums to %v, want %v within 0.1", c.pos, c.neg, c.neu, sum, SentimentTotal)
		}
		// relative ordering preserved
		if (c.pos > c.neg) != (p > n) && c.pos != c.neg {
			t.Fatalf("rebalance(%v,%v,%v) broke pos/neg ordering: got %v,%v", c.pos, c.neg, c.neu, p, n)
		}
		if (c.neg > c.neu) != (n > u) && c.neg != c.neu {
			t.Fatalf("rebalance(%v,%v,%v) broke neg/neu ordering: got %v,%v", c.pos, c.neg, c.neu, n, u)
		}
	}
}

func TestRebalanceSentimentAllZero(t *testing.T) {
	p, n, u := RebalanceSentiment(0, 0, 0)
	if p != 0 || n != 0 || u != 0 {
		t.Fatalf("zero triple should stay zero, got %v,%v,%v", p, n, u)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+91 98765-43210 ": "9876543210",
		"123":              "123",
		"":                 field.NotProvided,
		"(022) 4000-123":   "0224000123", // exactly 10 digits, kept as-is
		"abc":              field.NotProvided,
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecomputeAgentScore(t *testing.T) {
	metrics := field.Map{
		"Professionalism":      8,
		"Product_Knowledge":    6,
		"Communication_Skills": 7,
		"Problem_Solving":      9,
	}
	if got := RecomputeAgentScore(metrics); got != 8 {
		t.Fatalf("mean 7.5 should round half away from zero to 8, got %d", got)
	}
	partial := field.Map{"Professionalism": "9", "Product_Knowledge": "garbage"}
	if got := RecomputeAgentScore(partial); got != 9 {
		t.Fatalf("only usable metrics should count, got %d", got)
	}
	if got := RecomputeAgentScore(field.Map{}); got != 0 {
		t.Fatalf("no metrics should score 0, got %d", got)
	}
}

func TestNormalizeSummary(t *testing.T) {
	summary := field.Map{
		"score": 99, // extraction's own value, must be superseded
		"Sales_Agent_Score": map[string]any{
			"Professionalism":      8,
			"Product_Knowledge":    6,
			"Communication_Skills": 7,
			"Problem_Solving":      9,
		},
		"Sentiment_Scores": map[string]any{
			"Positive_Sentiment_Score": 4,
			"Negative_Sentiment_Score": 4,
			"Neutral_Sentiment_Score":  12,
			"Total_Sentiment_Score":    20,
		},
		"Customer": map[string]any{
			"Name":            "Ravi",
			"Contact_Details": "+91 98765 43210",
		},
	}
	out := NormalizeSummary(summary)

	if got, _ := out.Float("score"); got != 8 {
		t.Fatalf("score = %v, want recomputed 8", got)
	}
	ss := out.Child("Sentiment_Scores")
	if v, _ := ss.Float("Positive_Sentiment_Score"); v != 2 {
		t.Fatalf("positive = %v, want 2", v)
	}
	if v, _ := ss.Float("Neutral_Sentiment_Score"); v != 6 {
		t.Fatalf("neutral = %v, want 6", v)
	}
	if v, _ := ss.Float("Total_Sentiment_Score"); v != SentimentTotal {
		t.Fatalf("total = %v, want forced %v", v, SentimentTotal)
	}
	if got := out.Child("Customer").Str("Contact_Details"); got != "9876543210" {
		t.Fatalf("phone = %q, want 9876543210", got)
	}
}

func TestNormalizeSummaryMalformedSubtrees(t *testing.T) {
	summary := field.Map{
		"Sentiment_Scores": "not a map",
		"Sales_Agent_Score": []any{1, 2},
		"Customer":          42,
	}
	out := NormalizeSummary(summary)
	if got, _ := out.Float("score"); got != 0 {
		t.Fatalf("malformed metrics should score 0, got %v", got)
	}
}
