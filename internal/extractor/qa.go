package extractor

import (
	"context"
	"encoding/json"
	"strings"

	"call-audit-go/internal/llm"
	"call-audit-go/internal/types"
)

// ExtractQAPairs runs the speaker-identification prompt and returns the
// customer-question / executive-answer pairs it finds. Every failure mode —
// transport error, malformed JSON, unexpected shape — degrades to an empty
// list; the rest of the pipeline proceeds without Q&A data.
func (e *Extractor) ExtractQAPairs(ctx context.Context, transcript string) []types.QAPair {
	log := e.log.WithField("component", "qa-extractor")

	raw, err := e.gen.Generate(ctx, buildQAPrompt(transcript), llm.Params{MaxTokens: 2000})
	if err != nil {
		log.WithField("error", err.Error()).Warn("qa generation failed, returning no pairs")
		return nil
	}

	sub, ok := ExtractJSON(raw)
	if !ok {
		log.Warn("no JSON object in qa output")
		return nil
	}
	var parsed struct {
		QAPairs []types.QAPair `json:"qa_pairs"`
	}
	if err := json.Unmarshal([]byte(sub), &parsed); err != nil {
		log.WithField("error", err.Error()).Warn("qa output not parseable")
		return nil
	}
	return parsed.QAPairs
}

func buildQAPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString(`You are analyzing a sales call transcript where two speakers are having a conversation.

### Task:
1. Determine which speaker is the Customer and which is the Sales Executive.
2. Extract only the questions asked by the Customer.
3. Extract only the answers given by the Sales Executive.
4. Ignore questions asked by the Sales Executive.
5. Ensure Executive responses are complete (if cut-off, continue extracting).
6. Do not summarize or shorten responses.
7. Return valid JSON format (no extra text, no markdown).

### Speaker Identification Rules:
- The Customer asks about products, services, pricing, or features.
- The Sales Executive gives explanations, confirmations, and recommendations.

### Expected JSON Output Format:
{
    "qa_pairs": [
        {
            "customer_question": "Extracted question from customer",
            "executive_answer": "Full response from sales executive"
        }
    ]
}

### Conversation Transcript:
`)
	b.WriteString(transcript)
	return b.String()
}
