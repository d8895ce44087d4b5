package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"call-audit-go/internal/pipeline"
	"call-audit-go/internal/store"
)

// maxUploadBytes caps the multipart form held in memory before spilling to
// temp files.
const maxUploadBytes = 32 << 20

func (s *Server) uploadAudio(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "upload-audio")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		reqLog.WithError(err).Warn("bad multipart form")
		s.respondError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		reqLog.WithError(err).Warn("missing file field")
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	duration := 0.0
	if v := r.FormValue("duration_seconds"); v != "" {
		if duration, err = strconv.ParseFloat(v, 64); err != nil {
			s.respondError(w, http.StatusBadRequest, "duration_seconds must be numeric")
			return
		}
	}
	reqLog = reqLog.WithField("file_name", header.Filename)
	reqLog.Info("upload received")

	rec, err := s.uploader.ProcessUpload(r.Context(), pipeline.UploadInput{
		FileName:        header.Filename,
		Audio:           file,
		DurationSeconds: duration,
	})
	if err != nil {
		reqLog.WithError(err).Error("pipeline failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	reqLog.WithField("call_id", rec.CallID).Info("call processed and stored")
	s.respond(w, http.StatusCreated, rec)
}

func (s *Server) getCallDetails(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["call_id"]
	rec, err := s.records.Get(r.Context(), callID)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "call not found")
		return
	}
	if err != nil {
		s.log.WithRequest(r).WithError(err).Error("record lookup failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, rec)
}

func (s *Server) getCallAudit(w http.ResponseWriter, r *http.Request) {
	overview, err := s.agg.Overview(r.Context())
	if err != nil {
		s.log.WithRequest(r).WithError(err).Error("overview scan failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, overview)
}

func (s *Server) getAudioURL(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["call_id"]
	rec, err := s.records.Get(r.Context(), callID)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "call not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"call_id": rec.CallID, "audio_url": rec.SourceURI})
}

func (s *Server) getTotals(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.Totals(r.Context(), r.URL.Query().Get("agent_name"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getContactCounts(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.ContactCaptureRates(r.Context(), r.URL.Query().Get("agent_name"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) fetchContacts(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.ContactsByAgent(r.Context(), r.URL.Query().Get("agent_name"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) fetchEmails(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.EmailsByAgent(r.Context(), r.URL.Query().Get("agent_name"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) fetchCustomerNames(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.CustomerNamesByAgent(r.Context(), r.URL.Query().Get("agent_name"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getCallStatusCount(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.CallStatusCount(r.Context(), r.URL.Query().Get("agent_name"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getAgentNames(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.AgentNames(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getSentimentSummary(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.SentimentSummary(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getCallsPerDay(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.CallsPerDay(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getScoreRanking(w http.ResponseWriter, r *http.Request) {
	out, err := s.agg.ScoreRankings(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, out)
}
