package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"call-audit-go/internal/extractor"
	"call-audit-go/internal/field"
	"call-audit-go/internal/store"
	"call-audit-go/internal/types"
)

type fakeBlobs struct {
	lastKey string
}

func (f *fakeBlobs) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.lastKey = key
	io.Copy(io.Discard, body)
	return "https://blobs/" + key, nil
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, sourceURI, mediaFormat string) (string, error) {
	return f.transcript, f.err
}

type fakeExtractor struct {
	summary    field.Map
	summaryErr error
	pairs      []types.QAPair
}

func (f *fakeExtractor) ExtractSummary(ctx context.Context, transcript, referenceDate string) (field.Map, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return f.summary, nil
}

func (f *fakeExtractor) ExtractQAPairs(ctx context.Context, transcript string) []types.QAPair {
	return f.pairs
}

type fakeScorer struct {
	got []types.QAPair
}

func (f *fakeScorer) ValidateAll(ctx context.Context, pairs []types.QAPair) []types.ScoredQAPair {
	f.got = pairs
	out := make([]types.ScoredQAPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, types.ScoredQAPair{
			CustomerQuestion: p.CustomerQuestion,
			ExecutiveAnswer:  p.ExecutiveAnswer,
			Score:            7,
		})
	}
	return out
}

func newTestPipeline(tr *fakeTranscriber, ex *fakeExtractor) (*Pipeline, store.Store) {
	records := store.NewMemory()
	p := New(&fakeBlobs{}, tr, ex, &fakeScorer{}, records)
	return p, records
}

func TestProcessUploadStoresFullRecord(t *testing.T) {
	ex := &fakeExtractor{
		summary: field.Map{
			"Sales_Agent": map[string]any{"Name": "Asha"},
			"Sales_Agent_Score": map[string]any{
				"Professionalism":   8,
				"Product_Knowledge": 7,
			},
		},
		pairs: []types.QAPair{{CustomerQuestion: "What is the rate?", ExecutiveAnswer: "Around 9%."}},
	}
	p, records := newTestPipeline(&fakeTranscriber{transcript: "hello"}, ex)

	rec, err := p.ProcessUpload(context.Background(), UploadInput{
		FileName:        "call_2024_001.mp3",
		Audio:           strings.NewReader("audio-bytes"),
		DurationSeconds: 198,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if rec.CallID != "call_2024_001" {
		t.Fatalf("call id = %q", rec.CallID)
	}
	if rec.CallDuration != "3.18" {
		t.Fatalf("duration = %q, want 3.18", rec.CallDuration)
	}
	if rec.SourceURI != "https://blobs/recordings/call_2024_001.mp3" {
		t.Fatalf("source uri = %q", rec.SourceURI)
	}
	// normalization ran: recomputed score lands in the summary
	if got, ok := rec.Summary.Float("score"); !ok || got != 8 {
		t.Fatalf("summary score = %v ok=%v, want 8", got, ok)
	}
	if len(rec.QAPairs) != 1 || rec.QAPairs[0].Score != 7 {
		t.Fatalf("qa pairs = %+v", rec.QAPairs)
	}

	stored, err := records.Get(context.Background(), "call_2024_001")
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.Transcript != "hello" {
		t.Fatalf("stored transcript = %q", stored.Transcript)
	}
}

func TestProcessUploadTranscriptionFailureStoresNothing(t *testing.T) {
	p, records := newTestPipeline(&fakeTranscriber{err: errors.New("job failed")}, &fakeExtractor{})

	_, err := p.ProcessUpload(context.Background(), UploadInput{
		FileName: "broken.wav",
		Audio:    strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("expected transcription error")
	}
	if _, err := records.Get(context.Background(), "broken"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no record, got err=%v", err)
	}
}

func TestProcessUploadSummaryFailureDegradesToErrorPayload(t *testing.T) {
	ex := &fakeExtractor{
		summaryErr: &extractor.ParseError{Raw: "sorry, no json here", Err: errors.New("no JSON object found")},
	}
	p, _ := newTestPipeline(&fakeTranscriber{transcript: "hi"}, ex)

	rec, err := p.ProcessUpload(context.Background(), UploadInput{
		FileName: "odd_call.mp3",
		Audio:    strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if rec.Summary.Str("error") == "" {
		t.Fatalf("expected error payload, got %v", rec.Summary)
	}
	if rec.Summary.Str("raw_response") != "sorry, no json here" {
		t.Fatalf("raw_response = %q", rec.Summary.Str("raw_response"))
	}
	if rec.Transcript != "hi" {
		t.Fatalf("transcript should still be stored, got %q", rec.Transcript)
	}
}

func TestProcessUploadRejectsDuplicateCallID(t *testing.T) {
	p, _ := newTestPipeline(&fakeTranscriber{transcript: "hi"}, &fakeExtractor{summary: field.Map{}})

	in := UploadInput{FileName: "dup.mp3", Audio: strings.NewReader("x")}
	if _, err := p.ProcessUpload(context.Background(), in); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	in.Audio = strings.NewReader("x")
	if _, err := p.ProcessUpload(context.Background(), in); err == nil {
		t.Fatal("expected duplicate upload to fail")
	}
}

func TestSplitFileName(t *testing.T) {
	cases := []struct {
		in, id, format string
	}{
		{"call_001.mp3", "call_001", "mp3"},
		{"nested/path/call_002.WAV", "call_002", "wav"},
		{"noext", "noext", "mp3"},
		{"  trimmed.m4a ", "trimmed", "m4a"},
	}
	for _, c := range cases {
		id, format := splitFileName(c.in)
		if id != c.id || format != c.format {
			t.Fatalf("splitFileName(%q) = %q/%q, want %q/%q", c.in, id, format, c.id, c.format)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[float64]string{
		198:  "3.18",
		59.9: "0.59",
		60:   "1.0",
		0:    "0.0",
		-5:   "0.0",
	}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Fatalf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}
