// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/playback/headless"
	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/session"
)

type createSessionRequest struct {
	TitleID         string  `json:"titleId"`
	EpisodeID       string  `json:"episodeId,omitempty"`
	Quality         string  `json:"quality"`
	DurationSeconds float64 `json:"durationSeconds"`
	Autoplay        *bool   `json:"autoplay,omitempty"`
}

type sessionReply struct {
	ID string `json:"id"`
	model.SessionRecord
	AdRemainingSeconds float64 `json:"adRemainingSeconds,omitempty"`
}

func replyFor(e *Entry) sessionReply {
	return sessionReply{
		ID:                 e.ID,
		SessionRecord:      e.Manager.Snapshot(),
		AdRemainingSeconds: e.Manager.AdRemaining(),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.TitleID == "" {
		writeError(w, http.StatusBadRequest, "titleId is required")
		return
	}
	quality := model.QualityTier(req.Quality)
	if req.Quality == "" {
		quality = model.Quality720p
	}
	if !quality.Known() {
		writeError(w, http.StatusBadRequest, "unknown quality tier")
		return
	}

	surface := headless.NewVirtualSurface(req.DurationSeconds)
	adSurface := &headless.LogAdSurface{}
	mgr := &session.Manager{
		Backend:        s.Backend,
		Entitlements:   s.Entitlements,
		Ads:            s.AdProviderFor(req.TitleID),
		AdSurface:      adSurface,
		Surface:        surface,
		Engines:        s.Engines,
		HeartbeatEvery: s.HeartbeatEvery,
	}

	if err := mgr.Start(r.Context(), req.TitleID, req.EpisodeID, quality); err != nil {
		writeStartError(w, err)
		return
	}
	if req.Autoplay != nil && !*req.Autoplay {
		if err := mgr.TogglePlay(); err != nil {
			logger := log.WithComponentFromContext(r.Context(), "control")
			logger.Warn().Err(err).Msg("autoplay-off pause refused")
		}
	}

	entry := &Entry{
		ID:      uuid.NewString(),
		Manager: mgr,
		Surface: surface,
		Driver:  headless.NewDriver(surface, mgr, s.TickEvery),
	}
	// The clock outlives the create request; it is stopped by DELETE or
	// daemon shutdown.
	entry.Driver.Run(context.Background())
	s.registry.Put(entry)

	writeJSON(w, http.StatusCreated, replyFor(entry))
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	entries := s.registry.List()
	out := make([]sessionReply, 0, len(entries))
	for _, e := range entries {
		out = append(out, replyFor(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	writeJSON(w, http.StatusOK, replyFor(entry))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.registry.Remove(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	entry.Close(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	writeJSON(w, http.StatusOK, entry.Manager.Stats())
}

type controlRequest struct {
	Action  string  `json:"action"`
	Seconds float64 `json:"seconds,omitempty"`
	Volume  float64 `json:"volume,omitempty"`
	Quality string  `json:"quality,omitempty"`
	Key     string  `json:"key,omitempty"`
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	mgr := entry.Manager
	switch req.Action {
	case "toggle_play":
		if err := mgr.TogglePlay(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
	case "seek":
		mgr.Seek(req.Seconds)
	case "seek_by":
		mgr.SeekBy(req.Seconds)
	case "set_volume":
		mgr.SetVolume(req.Volume)
	case "toggle_mute":
		mgr.ToggleMute()
	case "toggle_fullscreen":
		mgr.ToggleFullscreen()
	case "set_quality":
		if err := mgr.SetQuality(model.QualityTier(req.Quality)); err != nil {
			status := http.StatusConflict
			if errors.Is(err, lifecycle.ErrBadRequest) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err.Error())
			return
		}
	case "skip_ad":
		if !mgr.SkipAd() {
			writeError(w, http.StatusConflict, "no skippable ad")
			return
		}
	case "skip_marker":
		if !mgr.SkipMarker() {
			writeError(w, http.StatusConflict, "no active marker")
			return
		}
	case "key":
		if !mgr.HandleKey(req.Key) {
			writeError(w, http.StatusBadRequest, "unhandled key")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	writeJSON(w, http.StatusOK, replyFor(entry))
}

// writeStartError maps session start failures onto the HTTP surface.
func writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrUnsupported):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, lifecycle.ErrSessionCanceled):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponent("control")
		logger.Warn().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}
