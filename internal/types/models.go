package types

import "call-audit-go/internal/field"

// CallRecord is the persisted result of processing one call. It is written
// exactly once, after the whole pipeline has run; there are no partial or
// incremental updates.
type CallRecord struct {
	CallID       string         `bson:"_id" json:"call_id"`
	CallDuration string         `bson:"call_duration" json:"call_duration"`
	SourceURI    string         `bson:"source_uri" json:"source_uri"`
	CreatedAt    string         `bson:"created_at" json:"created_at"`
	Transcript   string         `bson:"transcript" json:"transcript"`
	Summary      field.Map      `bson:"summary" json:"summary"`
	QAPairs      []ScoredQAPair `bson:"qa_pairs" json:"qa_pairs"`
}

// ScoredQAPair is one customer question with the executive's answer, the
// retrieval-grounded reference answer and the comparative evaluation. A pair
// rejected before scoring carries only Error.
type ScoredQAPair struct {
	CustomerQuestion string   `bson:"customer_question,omitempty" json:"customer_question,omitempty"`
	ExecutiveAnswer  string   `bson:"executive_answer,omitempty" json:"executive_answer,omitempty"`
	AIAnswer         string   `bson:"ai_answer,omitempty" json:"ai_answer,omitempty"`
	Score            float64  `bson:"score" json:"score"`
	Improvements     []string `bson:"improvements,omitempty" json:"improvements,omitempty"`
	Strengths        []string `bson:"strengths,omitempty" json:"strengths,omitempty"`
	Error            string   `bson:"error,omitempty" json:"error,omitempty"`
}

// QAPair is an unscored question/answer pair as the extraction prompt
// returns it.
type QAPair struct {
	CustomerQuestion string `json:"customer_question"`
	ExecutiveAnswer  string `json:"executive_answer"`
}

// KnowledgeChunk is one pre-embedded row of the knowledge-base table. The
// table is produced offline and read-only here.
type KnowledgeChunk struct {
	FileName  string
	Page      int
	Text      string
	Embedding []float64
}
