// Package server exposes the HTTP API: one upload endpoint that drives the
// processing pipeline, and read-only analytics endpoints computed by full
// scans over stored records. Responses use a {"success": ..., "data"/"error"}
// envelope.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"call-audit-go/internal/aggregator"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/pipeline"
	"call-audit-go/internal/store"
	"call-audit-go/internal/types"
)

// Uploader is the pipeline entry point the upload handler drives.
type Uploader interface {
	ProcessUpload(ctx context.Context, in pipeline.UploadInput) (*types.CallRecord, error)
}

type Server struct {
	uploader Uploader
	agg      *aggregator.Aggregator
	records  store.Store
	log      *logger.Logger
}

func New(uploader Uploader, agg *aggregator.Aggregator, records store.Store) *Server {
	return &Server{uploader: uploader, agg: agg, records: records, log: logger.New()}
}

// Router wires every endpoint. Paths mirror what the dashboard frontend
// already calls, snake/kebab mix included.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods("GET")

	r.HandleFunc("/upload-audio", s.uploadAudio).Methods("POST")
	r.HandleFunc("/get-call-details/{call_id}", s.getCallDetails).Methods("GET")
	r.HandleFunc("/get-call-audit", s.getCallAudit).Methods("GET")
	r.HandleFunc("/get-audio-url/{call_id}", s.getAudioURL).Methods("GET")

	r.HandleFunc("/get-total-calls-agents", s.getTotals).Methods("GET")
	r.HandleFunc("/get-contact-details-count", s.getContactCounts).Methods("GET")
	r.HandleFunc("/fetch_contacts_agent", s.fetchContacts).Methods("GET")
	r.HandleFunc("/fetch_email_agent", s.fetchEmails).Methods("GET")
	r.HandleFunc("/fetch_customer_name_agent", s.fetchCustomerNames).Methods("GET")
	r.HandleFunc("/get-call-status-count", s.getCallStatusCount).Methods("GET")
	r.HandleFunc("/get-agent-names", s.getAgentNames).Methods("GET")

	r.HandleFunc("/api/sentiment/summary", s.getSentimentSummary).Methods("GET")
	r.HandleFunc("/calls-per-day", s.getCallsPerDay).Methods("GET")
	r.HandleFunc("/agent/score-ranking", s.getScoreRanking).Methods("GET")

	return r
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.log.WithError(err).Error("failed to write response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, "ok")
}
