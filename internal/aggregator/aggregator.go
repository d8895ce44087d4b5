// Package aggregator computes cross-call statistics by draining the record
// store and folding over every record. Everything here is read-only and
// recomputed per invocation; correctness, not latency, is the priority for
// this batch-style path, so there is no incremental or cached state.
package aggregator

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"call-audit-go/internal/field"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/store"
	"call-audit-go/internal/types"
)

// MissingAgent is the roster bucket for calls where no agent name was
// extracted.
const MissingAgent = "Not Provided"

type Aggregator struct {
	store store.Store
	log   *logger.Logger
}

func New(s store.Store) *Aggregator {
	return &Aggregator{store: s, log: logger.New()}
}

func (a *Aggregator) scan(ctx context.Context) ([]types.CallRecord, error) {
	return store.ScanAll(ctx, a.store)
}

// ----------------------------------------------------------------------
// Score rankings
// ----------------------------------------------------------------------

// ScoreRankings averages each agent's recomputed score and sub-metrics and
// returns the top and bottom five by average score. Calls with no agent
// name are skipped, not bucketed; agents with no valid score entries are
// excluded entirely. Ties keep scan order.
func (a *Aggregator) ScoreRankings(ctx context.Context) (types.ScoreRankings, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return types.ScoreRankings{}, err
	}

	type metrics struct {
		scores, prof, pk, comm, prob []float64
	}
	byAgent := map[string]*metrics{}
	var order []string

	for _, rec := range records {
		name := strings.TrimSpace(rec.Summary.Child("Sales_Agent").Str("Name"))
		if name == "" {
			continue
		}
		m, ok := byAgent[name]
		if !ok {
			m = &metrics{}
			byAgent[name] = m
			order = append(order, name)
		}
		if v, ok := rec.Summary.Float("score"); ok {
			m.scores = append(m.scores, v)
		}
		sub := rec.Summary.Child("Sales_Agent_Score")
		if v, ok := sub.Float("Professionalism"); ok {
			m.prof = append(m.prof, v)
		}
		if v, ok := sub.Float("Product_Knowledge"); ok {
			m.pk = append(m.pk, v)
		}
		if v, ok := sub.Float("Communication_Skills"); ok {
			m.comm = append(m.comm, v)
		}
		if v, ok := sub.Float("Problem_Solving"); ok {
			m.prob = append(m.prob, v)
		}
	}

	var ranked []types.AgentRanking
	for _, name := range order {
		m := byAgent[name]
		if len(m.scores) == 0 {
			continue
		}
		ranked = append(ranked, types.AgentRanking{
			AgentName:              name,
			AvgScore:               round2(mean(m.scores)),
			AvgProfessionalism:     round2(meanOrZero(m.prof)),
			AvgProductKnowledge:    round2(meanOrZero(m.pk)),
			AvgCommunicationSkills: round2(meanOrZero(m.comm)),
			AvgProblemSolving:      round2(meanOrZero(m.prob)),
			TotalCalls:             len(m.scores),
		})
	}
	if len(ranked) == 0 {
		return types.ScoreRankings{Top5: []types.AgentRanking{}, Bottom5: []types.AgentRanking{}, Message: "No call records found."}, nil
	}

	top := make([]types.AgentRanking, len(ranked))
	copy(top, ranked)
	sort.SliceStable(top, func(i, j int) bool { return top[i].AvgScore > top[j].AvgScore })

	bottom := make([]types.AgentRanking, len(ranked))
	copy(bottom, ranked)
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].AvgScore < bottom[j].AvgScore })

	return types.ScoreRankings{
		Top5:    head(top, 5),
		Bottom5: head(bottom, 5),
		Message: "Successfully fetched agent rankings",
	}, nil
}

// ----------------------------------------------------------------------
// Sentiment
// ----------------------------------------------------------------------

// SentimentSummary classifies each call's dominant sentiment and computes
// the weighted average. Tie priority is positive, then negative, then
// neutral.
func (a *Aggregator) SentimentSummary(ctx context.Context) (types.SentimentSummary, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return types.SentimentSummary{}, err
	}
	out := types.SentimentSummary{}
	for _, rec := range records {
		ss := rec.Summary.Child("Sentiment_Scores")
		pos, _ := ss.Float("Positive_Sentiment_Score")
		neg, _ := ss.Float("Negative_Sentiment_Score")
		neu, _ := ss.Float("Neutral_Sentiment_Score")

		switch {
		case pos >= neg && pos >= neu:
			out.PositiveCalls++
		case neg >= pos && neg >= neu:
			out.NegativeCalls++
		default:
			out.NeutralCalls++
		}
		out.TotalCalls++
	}
	if out.TotalCalls == 0 {
		return out, nil
	}
	weighted := (float64(out.PositiveCalls)*1.0 + float64(out.NeutralCalls)*0.5) / float64(out.TotalCalls)
	out.AvgSentiment = round2(weighted * 100)
	return out, nil
}

// ----------------------------------------------------------------------
// Contact capture
// ----------------------------------------------------------------------

// ContactCaptureRates reports, independently for phone, email and customer
// name, how many calls captured the field. A value counts as captured unless
// it is empty or the "not provided" sentinel, compared case- and
// whitespace-insensitively. agentName filters when set and not "all".
func (a *Aggregator) ContactCaptureRates(ctx context.Context, agentName string) ([]types.ContactCapture, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}
	records = filterByAgent(records, agentName)
	total := len(records)

	var phones, emails, names int
	for _, rec := range records {
		customer := rec.Summary.Child("Customer")
		if captured(customer.Str("Contact_Details")) {
			phones++
		}
		if captured(customer.Str("Email")) {
			emails++
		}
		if captured(customer.Str("Name")) {
			names++
		}
	}

	build := func(title string, achieved int) types.ContactCapture {
		missed := total - achieved
		if missed < 0 {
			missed = 0
		}
		return types.ContactCapture{
			Title:           title,
			Achieved:        achieved,
			AchievedPercent: percent(achieved, total),
			Missed:          missed,
			MissedPercent:   percent(missed, total),
		}
	}
	return []types.ContactCapture{
		build("Contacts", phones),
		build("Emails", emails),
		build("Customers Name", names),
	}, nil
}

// ContactsByAgent lists captured phone numbers, optionally for one agent.
func (a *Aggregator) ContactsByAgent(ctx context.Context, agentName string) ([]types.AgentContact, error) {
	return a.capturedValues(ctx, agentName, "Contact_Details")
}

// EmailsByAgent lists captured emails, optionally for one agent.
func (a *Aggregator) EmailsByAgent(ctx context.Context, agentName string) ([]types.AgentContact, error) {
	return a.capturedValues(ctx, agentName, "Email")
}

// CustomerNamesByAgent lists captured customer names, optionally for one agent.
func (a *Aggregator) CustomerNamesByAgent(ctx context.Context, agentName string) ([]types.AgentContact, error) {
	return a.capturedValues(ctx, agentName, "Name")
}

func (a *Aggregator) capturedValues(ctx context.Context, agentName, key string) ([]types.AgentContact, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := []types.AgentContact{}
	for _, rec := range filterByAgent(records, agentName) {
		value := rec.Summary.Child("Customer").Str(key)
		if !captured(value) {
			continue
		}
		out = append(out, types.AgentContact{
			CallID:    rec.CallID,
			AgentName: rec.Summary.Child("Sales_Agent").Str("Name"),
			Value:     value,
		})
	}
	return out, nil
}

// ----------------------------------------------------------------------
// Calls per day
// ----------------------------------------------------------------------

var createdAtLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CallsPerDay buckets records by the calendar date of their creation
// timestamp. Unparsable timestamps are dropped silently.
func (a *Aggregator) CallsPerDay(ctx context.Context) (map[string]int, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, rec := range records {
		day, ok := parseDay(rec.CreatedAt)
		if !ok {
			continue
		}
		counts[day]++
	}
	return counts, nil
}

// ----------------------------------------------------------------------
// Roster, totals, completion status
// ----------------------------------------------------------------------

// AgentNames returns the distinct agent names across all calls, sorted.
// Calls with a missing or blank name collapse into a single MissingAgent
// entry.
func (a *Aggregator) AgentNames(ctx context.Context) ([]string, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}
	set := map[string]struct{}{}
	for _, rec := range records {
		name := strings.TrimSpace(rec.Summary.Child("Sales_Agent").Str("Name"))
		if name == "" {
			name = MissingAgent
		}
		set[name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Totals counts calls and distinct agents, optionally filtered to one agent.
func (a *Aggregator) Totals(ctx context.Context, agentName string) (types.CallTotals, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return types.CallTotals{}, err
	}
	if hasAgentFilter(agentName) {
		filtered := filterByAgent(records, agentName)
		return types.CallTotals{TotalCalls: len(filtered), TotalAgents: 1}, nil
	}
	agents := map[string]struct{}{}
	for _, rec := range records {
		name := strings.ToLower(strings.TrimSpace(rec.Summary.Child("Sales_Agent").Str("Name")))
		if name != "" {
			agents[name] = struct{}{}
		}
	}
	return types.CallTotals{TotalCalls: len(records), TotalAgents: len(agents)}, nil
}

// CallStatusCount splits calls on Call_Completion_Status. The comparison is
// exact string equality against the literal "True"; the extraction prompt
// emits "True"/"False" strings and anything else lands in the second
// bucket.
func (a *Aggregator) CallStatusCount(ctx context.Context, agentName string) (types.CallStatusCount, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return types.CallStatusCount{}, err
	}
	out := types.CallStatusCount{}
	for _, rec := range filterByAgent(records, agentName) {
		if rec.Summary.Str("Call_Completion_Status") == "True" {
			out.True++
		} else {
			out.NotProvidedOrFalse++
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------
// Flattened audit view
// ----------------------------------------------------------------------

// Overview flattens every stored record for the audit table, keyed by
// call_id.
func (a *Aggregator) Overview(ctx context.Context) (map[string]types.CallOverview, error) {
	records, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.CallOverview, len(records))
	for _, rec := range records {
		out[rec.CallID] = Flatten(rec)
	}
	return out, nil
}

// Flatten projects one record into the flat per-call view.
func Flatten(rec types.CallRecord) types.CallOverview {
	summary := rec.Summary
	customer := summary.Child("Customer")
	scores := summary.Child("Sales_Agent_Score")
	sentiment := summary.Child("Sentiment_Scores")
	return types.CallOverview{
		CallID:               rec.CallID,
		AgentName:            summary.Child("Sales_Agent").Str("Name"),
		CallDuration:         rec.CallDuration,
		UserSatisfaction:     summary.Str("User_Satisfaction"),
		CustomerName:         customer.Str("Name"),
		ProductInterest:      summary.Str("Product_Interest"),
		PurposeOfCall:        summary.Str("Purpose_of_call"),
		Score:                floatPtr(summary, "score"),
		Professionalism:      floatPtr(scores, "Professionalism"),
		ProductKnowledge:     floatPtr(scores, "Product_Knowledge"),
		CommunicationSkills:  floatPtr(scores, "Communication_Skills"),
		ProblemSolving:       floatPtr(scores, "Problem_Solving"),
		CallCompletionStatus: summary.Str("Call_Completion_Status"),
		TotalSentimentScore:  floatPtr(sentiment, "Total_Sentiment_Score"),
		PositiveSentiment:    floatPtr(sentiment, "Positive_Sentiment_Score"),
		NegativeSentiment:    floatPtr(sentiment, "Negative_Sentiment_Score"),
		NeutralSentiment:     floatPtr(sentiment, "Neutral_Sentiment_Score"),
		CreatedAt:            rec.CreatedAt,
		Transcript:           rec.Transcript,
		QAPairs:              rec.QAPairs,
	}
}

// ----------------------------------------------------------------------
// helpers
// ----------------------------------------------------------------------

func captured(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v != "" && v != field.NotProvided
}

func hasAgentFilter(agentName string) bool {
	return agentName != "" && !strings.EqualFold(agentName, "all")
}

func filterByAgent(records []types.CallRecord, agentName string) []types.CallRecord {
	if !hasAgentFilter(agentName) {
		return records
	}
	want := strings.ToLower(strings.TrimSpace(agentName))
	var out []types.CallRecord
	for _, rec := range records {
		name := strings.ToLower(strings.TrimSpace(rec.Summary.Child("Sales_Agent").Str("Name")))
		if name == want {
			out = append(out, rec)
		}
	}
	return out
}

func parseDay(value string) (string, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return mean(vals)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func head(r []types.AgentRanking, n int) []types.AgentRanking {
	if len(r) > n {
		return r[:n]
	}
	return r
}

func floatPtr(m field.Map, key string) *float64 {
	if v, ok := m.Float(key); ok {
		return &v
	}
	return nil
}
