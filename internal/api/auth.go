// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
)

// extractToken reads the API token from the request.
// Order: Authorization Bearer header, then X-API-Token.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return r.Header.Get("X-API-Token")
}

// requireToken guards mutating endpoints when a token is configured.
// Comparison is constant-time.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.apiToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		got := extractToken(r)
		if got == "" {
			writeError(w, r, http.StatusUnauthorized, "missing_token", "API token required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			logger := rmlog.WithComponentFromContext(r.Context(), "auth")
			logger.Warn().
				Str("remote_addr", r.RemoteAddr).
				Str("path", r.URL.Path).
				Msg("rejected request with invalid token")
			writeError(w, r, http.StatusForbidden, "invalid_token", "API token mismatch")
			return
		}
		next.ServeHTTP(w, r)
	})
}
