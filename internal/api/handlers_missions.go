// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/render"
	"github.com/NEPXiss/rescue-mission/internal/store"
)

// maxAdvanceSteps bounds a single advance request.
const maxAdvanceSteps = 10000

func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req CreateMissionRequest
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	view, err := s.missions.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "create_failed", err.Error())
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	views, err := s.missions.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")
	ctx := rmlog.ContextWithMissionID(r.Context(), id)
	r = r.WithContext(ctx)

	if payload, ok := s.cache.Get(statusCacheKey(id)); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}

	view, err := s.missions.Get(ctx, id)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	s.cache.Set(statusCacheKey(id), payload, s.cacheTTL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) handleAdvanceMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")
	ctx := rmlog.ContextWithMissionID(r.Context(), id)

	steps := 1
	if raw := r.URL.Query().Get("steps"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_steps", "steps must be a positive integer")
			return
		}
		steps = n
	}
	if steps > maxAdvanceSteps {
		steps = maxAdvanceSteps
	}

	view, err := s.missions.Advance(ctx, id, steps)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleRunMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")
	ctx := rmlog.ContextWithMissionID(r.Context(), id)

	view, err := s.missions.Run(ctx, id)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleMissionReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")

	report, err := s.missions.Report(r.Context(), id)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleMissionFrame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil || seq < 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_seq", "frame seq must be a non-negative integer")
		return
	}

	frame, err := s.missions.Frame(r.Context(), id, seq)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, frame)
}

func (s *Server) handleMissionMapPNG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")

	frame, err := s.missions.LatestFrame(r.Context(), id)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.WritePNG(w, frame, 0); err != nil {
		logger := rmlog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(rmlog.FieldMissionID, id).Msg("stream map png")
	}
}

func (s *Server) handleMissionAnimation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")

	frames, err := s.missions.Frames(id)
	if err != nil {
		s.writeMissionError(w, r, err)
		return
	}
	if len(frames) == 0 {
		writeError(w, r, http.StatusNotFound, "no_frames", "mission has no recorded frames")
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	if err := render.WriteGIF(w, frames, render.DefaultGIFOptions()); err != nil {
		logger := rmlog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(rmlog.FieldMissionID, id).Msg("stream animation gif")
	}
}

func (s *Server) handleDeleteMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "missionID")

	if err := s.missions.Delete(r.Context(), id); err != nil {
		s.writeMissionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeMissionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissionNotFound), errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrMissionFinished):
		writeError(w, r, http.StatusConflict, "mission_finished", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
