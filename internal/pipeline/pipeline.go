// Package pipeline runs the end-to-end processing of one uploaded call:
// store the audio, transcribe it, extract and normalize the summary, extract
// and score the Q&A pairs, then persist a single immutable record. Stages
// after transcription degrade rather than abort, so every transcribed call
// produces a stored record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"call-audit-go/internal/extractor"
	"call-audit-go/internal/field"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/normalizer"
	"call-audit-go/internal/store"
	"call-audit-go/internal/transcription"
	"call-audit-go/internal/types"
)

// Blobs is the slice of the object store the pipeline needs.
type Blobs interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Extractor produces a structured summary and raw Q&A pairs from a transcript.
type Extractor interface {
	ExtractSummary(ctx context.Context, transcript, referenceDate string) (field.Map, error)
	ExtractQAPairs(ctx context.Context, transcript string) []types.QAPair
}

// Scorer validates extracted Q&A pairs against the knowledge base.
type Scorer interface {
	ValidateAll(ctx context.Context, pairs []types.QAPair) []types.ScoredQAPair
}

type Pipeline struct {
	blobs       Blobs
	transcriber transcription.Transcriber
	extract     Extractor
	score       Scorer
	records     store.Store
	log         *logger.Logger
	now         func() time.Time
}

func New(blobs Blobs, transcriber transcription.Transcriber, extract Extractor, score Scorer, records store.Store) *Pipeline {
	return &Pipeline{
		blobs:       blobs,
		transcriber: transcriber,
		extract:     extract,
		score:       score,
		records:     records,
		log:         logger.New(),
		now:         time.Now,
	}
}

// UploadInput is one audio file submitted for processing. DurationSeconds
// comes from the upload request; the service never inspects the audio itself.
type UploadInput struct {
	FileName        string
	Audio           io.Reader
	DurationSeconds float64
}

var mediaContentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
}

// ProcessUpload runs the full pipeline for one call. The call id is the file
// name without its extension, so re-uploading the same file is rejected by
// the store's insert-once semantics. A transcription failure aborts with no
// record written; failures in later stages are captured inside the record.
func (p *Pipeline) ProcessUpload(ctx context.Context, in UploadInput) (*types.CallRecord, error) {
	callID, mediaFormat := splitFileName(in.FileName)
	if callID == "" {
		return nil, fmt.Errorf("invalid file name %q", in.FileName)
	}
	log := p.log.WithField("component", "pipeline").WithField("call_id", callID)

	sourceURI, err := p.blobs.Put(ctx, "recordings/"+in.FileName, in.Audio, mediaContentTypes[mediaFormat])
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	log.WithField("source_uri", sourceURI).Info("audio stored, starting transcription")

	transcript, err := p.transcriber.Transcribe(ctx, sourceURI, mediaFormat)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", callID, err)
	}

	summary := p.buildSummary(ctx, log, transcript)
	pairs := p.extract.ExtractQAPairs(ctx, transcript)
	scored := p.score.ValidateAll(ctx, pairs)
	log.WithField("qa_pairs", len(scored)).Info("call analysis complete")

	rec := types.CallRecord{
		CallID:       callID,
		CallDuration: formatDuration(in.DurationSeconds),
		SourceURI:    sourceURI,
		CreatedAt:    p.now().UTC().Format("2006-01-02T15:04:05"),
		Transcript:   transcript,
		Summary:      summary,
		QAPairs:      scored,
	}
	if err := p.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist %s: %w", callID, err)
	}
	return &rec, nil
}

// buildSummary extracts and normalizes the structured summary. An extraction
// failure degrades to an error payload so the record still captures the
// transcript and whatever the model returned.
func (p *Pipeline) buildSummary(ctx context.Context, log *logrus.Entry, transcript string) field.Map {
	summary, err := p.extract.ExtractSummary(ctx, transcript, "")
	if err != nil {
		log.WithError(err).Warn("summary extraction failed, storing error payload")
		payload := field.Map{"error": err.Error()}
		var pe *extractor.ParseError
		if errors.As(err, &pe) {
			payload["raw_response"] = pe.Raw
		}
		return payload
	}
	normalizer.NormalizeSummary(summary)
	return summary
}

// splitFileName returns the call id (name without extension) and the media
// format (extension without dot, lowercased, defaulting to mp3).
func splitFileName(name string) (string, string) {
	base := path.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return "", ""
	}
	ext := path.Ext(base)
	id := strings.TrimSuffix(base, ext)
	format := strings.ToLower(strings.TrimPrefix(ext, "."))
	if format == "" {
		format = "mp3"
	}
	return id, format
}

// formatDuration renders seconds as "minutes.seconds", e.g. 198s -> "3.18".
func formatDuration(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d.%d", total/60, total%60)
}
