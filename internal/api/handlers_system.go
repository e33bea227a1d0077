// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, r, http.StatusNotFound, "history_disabled", "mission history is not enabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, r, http.StatusNotFound, "history_disabled", "mission history is not enabled")
		return
	}

	stats, err := s.history.AggregateStats(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.cache.Stats())
}
