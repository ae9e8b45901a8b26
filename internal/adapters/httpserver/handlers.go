package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// handleAnalyze runs the full pipeline over one email
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := s.service.Analyze(r.Context(), req.toEmail())
	s.writeJSON(w, http.StatusOK, report)
}

// handleAnalyzeBatch runs the pipeline over each email independently.
// A malformed or empty item produces an inline error for that index
// without affecting its siblings.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var batch batchRequest
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	reqs := batch.Emails
	if len(reqs) == 0 {
		s.writeError(w, http.StatusBadRequest, "batch is empty")
		return
	}
	if max := s.cfg.MaxBatchSize; max > 0 && len(reqs) > max {
		s.writeError(w, http.StatusBadRequest, batchTooLarge(len(reqs), max))
		return
	}

	resp := batchResponse{
		Count:   len(reqs),
		Results: make([]batchItemResult, 0, len(reqs)),
	}

	for i := range reqs {
		item := batchItemResult{Index: i}
		if err := reqs[i].validate(); err != nil {
			item.Error = err.Error()
		} else {
			item.Report = s.service.Analyze(r.Context(), reqs[i].toEmail())
		}
		resp.Results = append(resp.Results, item)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports liveness plus per-capability readiness. A warming
// process answers 503 so load balancers hold traffic until the models
// are up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.registry.Ready()

	resp := healthResponse{
		Status:        "ok",
		Ready:         ready,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Capabilities:  s.registry.Snapshot(),
	}

	status := http.StatusOK
	if !ready {
		resp.Status = "initializing"
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, resp)
}

// writeJSON serializes a response body
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError serializes a request-level failure
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
