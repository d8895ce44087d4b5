package aggregator

import (
	"context"
	"fmt"
	"testing"

	"call-audit-go/internal/field"
	"call-audit-go/internal/store"
	"call-audit-go/internal/types"
)

func seed(t *testing.T, records ...types.CallRecord) store.Store {
	t.Helper()
	s := store.NewMemory()
	for i, rec := range records {
		if rec.CallID == "" {
			rec.CallID = fmt.Sprintf("call-%03d", i)
		}
		if err := s.Put(context.Background(), rec); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	return s
}

func withAgentScore(agent string, score float64) types.CallRecord {
	return types.CallRecord{Summary: field.Map{
		"Sales_Agent": map[string]any{"Name": agent},
		"score":       score,
	}}
}

func TestScoreRankingsAverages(t *testing.T) {
	records := []types.CallRecord{
		withAgentScore("Asha", 6),
		withAgentScore("Asha", 8),
		withAgentScore("Asha", 10),
	}
	// seven other agents with flat scores
	for i := 0; i < 7; i++ {
		records = append(records, withAgentScore(fmt.Sprintf("Agent %d", i), 5))
	}
	a := New(seed(t, records...))

	rankings, err := a.ScoreRankings(context.Background())
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(rankings.Top5) != 5 || len(rankings.Bottom5) != 5 {
		t.Fatalf("top/bottom sizes = %d/%d", len(rankings.Top5), len(rankings.Bottom5))
	}
	best := rankings.Top5[0]
	if best.AgentName != "Asha" || best.AvgScore != 8.0 {
		t.Fatalf("top agent = %s avg %v, want Asha 8.0", best.AgentName, best.AvgScore)
	}
	if best.TotalCalls != 3 {
		t.Fatalf("Asha total calls = %d, want 3", best.TotalCalls)
	}
}

func TestScoreRankingsSkipsMissingNamesAndEmptyAgents(t *testing.T) {
	a := New(seed(t,
		withAgentScore("Ravi", 7),
		types.CallRecord{Summary: field.Map{"score": 9}},                                       // no agent block
		types.CallRecord{Summary: field.Map{"Sales_Agent": map[string]any{"Name": "Ghost"}}}, // agent but no score
	))
	rankings, err := a.ScoreRankings(context.Background())
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(rankings.Top5) != 1 || rankings.Top5[0].AgentName != "Ravi" {
		t.Fatalf("expected only Ravi ranked, got %+v", rankings.Top5)
	}
}

func TestScoreRankingsSubMetrics(t *testing.T) {
	a := New(seed(t, types.CallRecord{Summary: field.Map{
		"Sales_Agent": map[string]any{"Name": "Meera"},
		"score":       8,
		"Sales_Agent_Score": map[string]any{
			"Professionalism":      9,
			"Product_Knowledge":    "7", // string numeric still counts
			"Communication_Skills": "n/a",
		},
	}}))
	rankings, err := a.ScoreRankings(context.Background())
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	r := rankings.Top5[0]
	if r.AvgProfessionalism != 9 || r.AvgProductKnowledge != 7 {
		t.Fatalf("sub-metric averages = %v / %v", r.AvgProfessionalism, r.AvgProductKnowledge)
	}
	if r.AvgCommunicationSkills != 0 {
		t.Fatalf("unusable metric should average 0, got %v", r.AvgCommunicationSkills)
	}
}

func withSentiment(pos, neg, neu float64) types.CallRecord {
	return types.CallRecord{Summary: field.Map{
		"Sentiment_Scores": map[string]any{
			"Positive_Sentiment_Score": pos,
			"Negative_Sentiment_Score": neg,
			"Neutral_Sentiment_Score":  neu,
		},
	}}
}

func TestSentimentSummaryTiePriority(t *testing.T) {
	a := New(seed(t,
		withSentiment(4, 4, 2), // pos/neg tie goes positive
		withSentiment(2, 4, 4), // neg/neu tie goes negative
		withSentiment(1, 2, 7),
	))
	out, err := a.SentimentSummary(context.Background())
	if err != nil {
		t.Fatalf("sentiment: %v", err)
	}
	if out.PositiveCalls != 1 || out.NegativeCalls != 1 || out.NeutralCalls != 1 {
		t.Fatalf("buckets = %d/%d/%d, want 1/1/1", out.PositiveCalls, out.NegativeCalls, out.NeutralCalls)
	}
	// (1*1.0 + 1*0.5 + 1*0.0) / 3 * 100 = 50
	if out.AvgSentiment != 50.0 {
		t.Fatalf("avg sentiment = %v, want 50.0", out.AvgSentiment)
	}
}

func TestSentimentSummaryEmptyStore(t *testing.T) {
	a := New(store.NewMemory())
	out, err := a.SentimentSummary(context.Background())
	if err != nil {
		t.Fatalf("sentiment: %v", err)
	}
	if out.TotalCalls != 0 || out.AvgSentiment != 0 {
		t.Fatalf("expected zero-filled summary, got %+v", out)
	}
}

func withCustomer(phone, email, name string) types.CallRecord {
	return types.CallRecord{Summary: field.Map{
		"Customer": map[string]any{
			"Contact_Details": phone,
			"Email":           email,
			"Name":            name,
		},
	}}
}

func TestContactCaptureRates(t *testing.T) {
	a := New(seed(t,
		withCustomer("9876543210", "a@x.com", "A"),
		withCustomer("9876543211", "Not Provided", "B"),
		withCustomer("9876543212", "", "C"),
		withCustomer(" not provided ", "d@x.com", "not provided"),
	))
	out, err := a.ContactCaptureRates(context.Background(), "")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	phones := out[0]
	if phones.Achieved != 3 || phones.AchievedPercent != 75.0 || phones.Missed != 1 || phones.MissedPercent != 25.0 {
		t.Fatalf("phones = %+v", phones)
	}
	emails := out[1]
	if emails.Achieved != 2 || emails.Missed != 2 {
		t.Fatalf("emails = %+v", emails)
	}
	names := out[2]
	if names.Achieved != 3 {
		t.Fatalf("names = %+v", names)
	}
}

func TestCallsPerDayAcceptsBothTimestampFormats(t *testing.T) {
	a := New(seed(t,
		types.CallRecord{CreatedAt: "2024-03-01T10:00:00", Summary: field.Map{}},
		types.CallRecord{CreatedAt: "2024-03-01 10:00:00", Summary: field.Map{}},
		types.CallRecord{CreatedAt: "yesterday-ish", Summary: field.Map{}},
	))
	counts, err := a.CallsPerDay(context.Background())
	if err != nil {
		t.Fatalf("calls per day: %v", err)
	}
	if counts["2024-03-01"] != 2 {
		t.Fatalf("bucket 2024-03-01 = %d, want 2", counts["2024-03-01"])
	}
	if len(counts) != 1 {
		t.Fatalf("unparsable timestamp should be dropped, got %v", counts)
	}
}

func TestAgentNamesRoster(t *testing.T) {
	a := New(seed(t,
		withAgentScore("Zara", 5),
		withAgentScore("Asha", 5),
		types.CallRecord{Summary: field.Map{}},
		types.CallRecord{Summary: field.Map{"Sales_Agent": map[string]any{"Name": "  "}}},
	))
	names, err := a.AgentNames(context.Background())
	if err != nil {
		t.Fatalf("agent names: %v", err)
	}
	want := []string{"Asha", MissingAgent, "Zara"}
	if len(names) != len(want) {
		t.Fatalf("roster = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("roster = %v, want %v", names, want)
		}
	}
}

func TestCallStatusCountLiteralTrue(t *testing.T) {
	a := New(seed(t,
		types.CallRecord{Summary: field.Map{"Call_Completion_Status": "True"}},
		types.CallRecord{Summary: field.Map{"Call_Completion_Status": "true"}},  // literal comparison: not "True"
		types.CallRecord{Summary: field.Map{"Call_Completion_Status": "False"}},
		types.CallRecord{Summary: field.Map{}},
	))
	out, err := a.CallStatusCount(context.Background(), "")
	if err != nil {
		t.Fatalf("status count: %v", err)
	}
	if out.True != 1 || out.NotProvidedOrFalse != 3 {
		t.Fatalf("status = %+v, want 1 true / 3 other", out)
	}
}

func TestTotalsWithAgentFilter(t *testing.T) {
	a := New(seed(t,
		withAgentScore("Asha", 5),
		withAgentScore("asha ", 6), // name compare is case/space-insensitive
		withAgentScore("Ravi", 7),
	))
	all, err := a.Totals(context.Background(), "all")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if all.TotalCalls != 3 || all.TotalAgents != 2 {
		t.Fatalf("totals = %+v, want 3 calls / 2 agents", all)
	}
	one, err := a.Totals(context.Background(), "Asha")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if one.TotalCalls != 2 || one.TotalAgents != 1 {
		t.Fatalf("filtered totals = %+v, want 2 calls / 1 agent", one)
	}
}

func TestContactsByAgent(t *testing.T) {
	recA := withCustomer("9876543210", "a@x.com", "Cust A")
	recA.Summary["Sales_Agent"] = map[string]any{"Name": "Asha"}
	recB := withCustomer("not provided", "b@x.com", "Cust B")
	recB.Summary["Sales_Agent"] = map[string]any{"Name": "Asha"}
	recC := withCustomer("9876543212", "c@x.com", "Cust C")
	recC.Summary["Sales_Agent"] = map[string]any{"Name": "Ravi"}

	a := New(seed(t, recA, recB, recC))
	contacts, err := a.ContactsByAgent(context.Background(), "Asha")
	if err != nil {
		t.Fatalf("contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Value != "9876543210" {
		t.Fatalf("contacts = %+v", contacts)
	}
}

func TestFlattenSafeCoercion(t *testing.T) {
	rec := types.CallRecord{
		CallID:       "c1",
		CallDuration: "3.18",
		Summary: field.Map{
			"Sales_Agent":       map[string]any{"Name": "Asha"},
			"score":             "8",
			"Sales_Agent_Score": map[string]any{"Professionalism": "high"},
		},
	}
	flat := Flatten(rec)
	if flat.Score == nil || *flat.Score != 8 {
		t.Fatalf("score = %v, want 8", flat.Score)
	}
	if flat.Professionalism != nil {
		t.Fatalf("non-numeric metric should flatten to nil, got %v", *flat.Professionalism)
	}
	if flat.AgentName != "Asha" || flat.CallDuration != "3.18" {
		t.Fatalf("flat = %+v", flat)
	}
}
