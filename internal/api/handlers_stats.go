package api

import (
	"net/http"
)

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       s.library.Stats().Snapshot(),
		"queue_depth": s.indexer.QueueDepth(),
	})
}
