// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import (
	"context"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// StartSessionRequest is the session-creation payload.
type StartSessionRequest struct {
	TitleID   string            `json:"title_id"`
	EpisodeID string            `json:"episode_id,omitempty"`
	Quality   model.QualityTier `json:"quality"`
	Protocol  string            `json:"protocol"`
}

// StartSessionResponse is the backend's session ticket.
type StartSessionResponse struct {
	SessionID   string `json:"session_id"`
	ManifestURL string `json:"manifest_url"`
}

// Backend is the REST collaborator consumed by the session manager.
// All calls are asynchronous from the controller's point of view and must
// honor ctx cancellation.
type Backend interface {
	StartSession(ctx context.Context, req StartSessionRequest) (StartSessionResponse, error)

	// Heartbeat is best-effort telemetry: failures are logged by the
	// caller and never affect playback.
	Heartbeat(ctx context.Context, sessionID string, hb model.Heartbeat) error

	// EndSession reports the final position. Fire-and-forget from the
	// caller's perspective, but issued before teardown proceeds.
	EndSession(ctx context.Context, sessionID string, lastPositionSeconds float64) error

	Markers(ctx context.Context, episodeID string) ([]model.SceneMarker, error)
}
