// Package retrieval does nearest-neighbor lookup over pre-embedded
// knowledge-base chunks by cosine similarity. Every query reloads the table
// and does a full linear scan; the table is small and logically immutable
// between ingestions, so there is no cache to invalidate.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"

	"call-audit-go/internal/embedding"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/types"
)

// DefaultTopN is how many chunks a query returns unless the caller asks
// otherwise.
const DefaultTopN = 5

// ErrNoData means the knowledge table could not be loaded or the query could
// not be embedded. Callers treat it as "no context available" and degrade.
var ErrNoData = errors.New("retrieval: no knowledge data")

// Result is one scored chunk.
type Result struct {
	Chunk types.KnowledgeChunk
	Score float64
}

type Index struct {
	loader   Loader
	embedder embedding.Embedder
	log      *logger.Logger
}

func NewIndex(loader Loader, embedder embedding.Embedder) *Index {
	return &Index{loader: loader, embedder: embedder, log: logger.New()}
}

// Query returns the topN chunks most similar to the query text, descending
// by cosine similarity, ties kept in table order. Rows whose stored
// embedding fails to parse are skipped, not fatal.
func (ix *Index) Query(ctx context.Context, query string, topN int) ([]Result, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	log := ix.log.WithField("component", "retrieval")

	rows, err := ix.loader.Load(ctx)
	if err != nil || len(rows) == 0 {
		log.WithField("error", errString(err)).Warn("knowledge table unavailable")
		return nil, ErrNoData
	}

	qvec, err := ix.embedder.Embed(ctx, query)
	if err != nil || len(qvec) == 0 {
		log.WithField("error", errString(err)).Warn("query embedding unavailable")
		return nil, ErrNoData
	}

	var scored []Result
	skipped := 0
	for _, row := range rows {
		var vec []float64
		if err := json.Unmarshal([]byte(row.RawEmbedding), &vec); err != nil || len(vec) == 0 {
			skipped++
			continue
		}
		sim, ok := cosine(qvec, vec)
		if !ok {
			skipped++
			continue
		}
		scored = append(scored, Result{
			Chunk: types.KnowledgeChunk{
				FileName:  row.FileName,
				Page:      row.Page,
				Text:      row.Text,
				Embedding: vec,
			},
			Score: sim,
		})
	}
	if skipped > 0 {
		log.WithField("skipped_rows", skipped).Debug("skipped rows with unusable embeddings")
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored, nil
}

// cosine returns the cosine similarity of two vectors. Mismatched dimensions
// or a zero-norm vector are unusable rather than an error.
func cosine(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

func errString(err error) string {
	if err == nil {
		return "empty"
	}
	return err.Error()
}
