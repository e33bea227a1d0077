// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
)

// errorResponse is the JSON error envelope for all API failures.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := rmlog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, r, status, errorResponse{Error: code, Detail: detail})
}
