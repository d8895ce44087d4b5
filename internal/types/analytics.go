// internal/types/analytics.go
package types

// --------------------------------------------
// Aggregation results returned by the API
// --------------------------------------------

// AgentRanking is one agent's averages across every call they appear in.
type AgentRanking struct {
	AgentName              string  `json:"agent_name"`
	AvgScore               float64 `json:"avg_score"`
	AvgProfessionalism     float64 `json:"avg_professionalism"`
	AvgProductKnowledge    float64 `json:"avg_product_knowledge"`
	AvgCommunicationSkills float64 `json:"avg_communication_skills"`
	AvgProblemSolving      float64 `json:"avg_problem_solving"`
	TotalCalls             int     `json:"total_calls"`
}

type ScoreRankings struct {
	Top5    []AgentRanking `json:"top_5_agents"`
	Bottom5 []AgentRanking `json:"bottom_5_agents"`
	Message string         `json:"message"`
}

type SentimentSummary struct {
	AvgSentiment  float64 `json:"avg_sentiment"`
	TotalCalls    int     `json:"total_calls"`
	PositiveCalls int     `json:"positive_calls"`
	NegativeCalls int     `json:"negative_calls"`
	NeutralCalls  int     `json:"neutral_calls"`
}

// ContactCapture reports how often one contact field (phone, email or
// customer name) was actually captured across all calls.
type ContactCapture struct {
	Title           string  `json:"title"`
	Achieved        int     `json:"achieved"`
	AchievedPercent float64 `json:"achievedPercent"`
	Missed          int     `json:"missed"`
	MissedPercent   float64 `json:"missedPercent"`
}

type CallStatusCount struct {
	True               int `json:"true"`
	NotProvidedOrFalse int `json:"not_provided_or_false"`
}

type CallTotals struct {
	TotalCalls  int `json:"total_calls"`
	TotalAgents int `json:"total_agents"`
}

// AgentContact is one captured contact value attributed to an agent.
type AgentContact struct {
	CallID    string `json:"call_id"`
	AgentName string `json:"agent_name"`
	Value     string `json:"value"`
}

// --------------------------------------------
// Flattened per-call view for the audit table
// --------------------------------------------

// CallOverview is a flat projection of a stored record, with every numeric
// field pulled through safe coercion so the frontend never sees raw model
// output shapes.
type CallOverview struct {
	CallID               string         `json:"call_id"`
	AgentName            string         `json:"agent_name"`
	CallDuration         string         `json:"call_duration"`
	UserSatisfaction     string         `json:"user_satisfaction"`
	CustomerName         string         `json:"customer_name"`
	ProductInterest      string         `json:"product_interest"`
	PurposeOfCall        string         `json:"purpose_of_call"`
	Score                *float64       `json:"score"`
	Professionalism      *float64       `json:"professionalism"`
	ProductKnowledge     *float64       `json:"product_knowledge"`
	CommunicationSkills  *float64       `json:"communication_skills"`
	ProblemSolving       *float64       `json:"problem_solving"`
	CallCompletionStatus string         `json:"call_completion_status"`
	TotalSentimentScore  *float64       `json:"total_sentiment_score"`
	PositiveSentiment    *float64       `json:"positive_sentiment_score"`
	NegativeSentiment    *float64       `json:"negative_sentiment_score"`
	NeutralSentiment     *float64       `json:"neutral_sentiment_score"`
	CreatedAt            string         `json:"created_at"`
	Transcript           string         `json:"transcript"`
	QAPairs              []ScoredQAPair `json:"qa_pairs"`
}
