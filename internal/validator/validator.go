// Package validator scores each extracted Q&A pair by re-deriving an ideal
// answer from the knowledge base and asking the model to compare it with
// what the executive actually said. It always produces a result for every
// input pair: a pair can be dropped with an error entry, or scored zero with
// a diagnostic, but the batch never fails.
package validator

import (
	"context"
	"fmt"
	"strings"

	"call-audit-go/internal/llm"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/retrieval"
	"call-audit-go/internal/types"
)

// FallbackAnswer stands in for the reference answer when retrieval or
// generation fails.
const FallbackAnswer = "No AI answer available."

// Retriever is the slice of the retrieval index the validator needs.
type Retriever interface {
	Query(ctx context.Context, query string, topN int) ([]retrieval.Result, error)
}

type Validator struct {
	gen   llm.Generator
	index Retriever
	topN  int
	log   *logger.Logger
}

func New(gen llm.Generator, index Retriever) *Validator {
	return &Validator{gen: gen, index: index, topN: retrieval.DefaultTopN, log: logger.New()}
}

// ValidateAll scores pairs in input order. Pairs with an empty question or
// answer after trimming become error entries, so the output can be shorter
// than the input only in the sense of dropped pairs; callers must not assume
// length equality with scored entries.
func (v *Validator) ValidateAll(ctx context.Context, pairs []types.QAPair) []types.ScoredQAPair {
	log := v.log.WithField("component", "validator")
	results := make([]types.ScoredQAPair, 0, len(pairs))

	for i, pair := range pairs {
		question := strings.TrimSpace(pair.CustomerQuestion)
		answer := strings.TrimSpace(pair.ExecutiveAnswer)
		if question == "" || answer == "" {
			log.WithField("pair_index", i).Warn("pair missing question or answer, recording error entry")
			results = append(results, types.ScoredQAPair{Error: "Missing required fields in qa_pair."})
			continue
		}

		aiAnswer := v.referenceAnswer(ctx, question)
		eval := v.evaluate(ctx, question, aiAnswer, answer)

		results = append(results, types.ScoredQAPair{
			CustomerQuestion: question,
			ExecutiveAnswer:  answer,
			AIAnswer:         aiAnswer,
			Score:            eval.score,
			Improvements:     eval.improvements,
			Strengths:        eval.strengths,
		})
	}
	return results
}

// referenceAnswer derives the ideal answer for a question from the knowledge
// base. Every failure collapses to FallbackAnswer.
func (v *Validator) referenceAnswer(ctx context.Context, question string) string {
	results, err := v.index.Query(ctx, question, v.topN)
	var contexts []string
	if err == nil {
		for _, r := range results {
			contexts = append(contexts, r.Chunk.Text)
		}
	}

	answer, err := v.gen.Generate(ctx, buildAnswerPrompt(question, contexts), llm.Params{MaxTokens: 300, Temperature: 0.3})
	if err != nil || strings.TrimSpace(answer) == "" {
		return FallbackAnswer
	}
	return strings.TrimSpace(answer)
}

type evaluation struct {
	score        float64
	improvements []string
	strengths    []string
}

// evaluate asks the model to compare the executive's answer against the
// reference one. A transport failure or unparsable verdict becomes a zero
// score with a diagnostic improvement note.
func (v *Validator) evaluate(ctx context.Context, question, aiAnswer, executiveAnswer string) evaluation {
	raw, err := v.gen.Generate(ctx, buildScoringPrompt(question, aiAnswer, executiveAnswer), llm.Params{MaxTokens: 1000, Temperature: 0.3})
	if err != nil {
		return evaluation{score: 0, improvements: []string{fmt.Sprintf("Error during evaluation: %v", err)}, strengths: []string{}}
	}

	verdict, err := decodeEvaluation(raw)
	if err != nil {
		return evaluation{score: 0, improvements: []string{"Could not parse evaluation"}, strengths: []string{}}
	}
	return verdict
}

func buildAnswerPrompt(question string, contexts []string) string {
	return fmt.Sprintf(`You are a helpful AI assistant. Based on the following context:

Context:
%s

Please provide a concise 2-3 sentence answer to this question:
Question: %s

Guidelines:
- Be factual and precise
- Use only the provided context
- If unsure, say "I don't have enough information"
- Keep response under 100 words
`, strings.Join(contexts, ""), question)
}

func buildScoringPrompt(question, aiAnswer, executiveAnswer string) string {
	return fmt.Sprintf(`You are evaluating a sales conversation. Here are the details:

Customer Question: %q

AI-Generated Ideal Answer: %q
Salesperson's Actual Answer: %q

Please evaluate how well the salesperson's answer matches the ideal answer in terms of:
1. Accuracy of information
2. Clarity of explanation
3. Relevance to the question
4. Professional tone
5. Completeness of response

Provide:
1. A score from 0-10 (10 being perfect)
2. Specific improvements needed (if any)
3. What was done well

Return your evaluation in this exact JSON format:
{
    "score": <number>,
    "improvements": ["list", "of", "suggestions"],
    "strengths": ["list", "of", "positive", "aspects"]
}
`, question, aiAnswer, executiveAnswer)
}
