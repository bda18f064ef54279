package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/lawref/internal/library"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type indexRequest struct {
	Categories []string `json:"categories"`
}

// handleIndex queues a job that parses every law of the named categories,
// or of the whole catalog when the body is empty.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	job := library.NewJob(uuid.NewString(), req.Categories)
	if err := s.indexer.Submit(job); err != nil {
		s.writeError(w, "submit index job", err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   library.StatusQueued,
		"poll_url": fmt.Sprintf("/api/index/%s/status", job.ID),
	})
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.indexer.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
