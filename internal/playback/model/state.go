// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// SessionState is the controller-visible lifecycle of a playback attempt.
// It is intentionally coarse-grained and stable: metrics and the control
// API depend on these values.
type SessionState string

const (
	SessionIdle         SessionState = "IDLE"
	SessionInitializing SessionState = "INITIALIZING"
	SessionReady        SessionState = "READY"
	SessionPlaying      SessionState = "PLAYING"
	SessionPaused       SessionState = "PAUSED"
	SessionEnded        SessionState = "ENDED"
	SessionError        SessionState = "ERROR"
)

// IsTerminal returns true if the state is final for this session object.
// Error is terminal by contract: a caller must start a new session.
func (s SessionState) IsTerminal() bool {
	switch s {
	case SessionEnded, SessionError:
		return true
	}
	return false
}

// ReasonCode is a compact, typed failure/decision signal.
// Keep these stable: metrics + client UX depend on them.
type ReasonCode string

const (
	RNone                ReasonCode = "R_NONE"
	RUnknown             ReasonCode = "R_UNKNOWN"
	RBadRequest          ReasonCode = "R_BAD_REQUEST"
	RSessionCreateFailed ReasonCode = "R_SESSION_CREATE_FAILED"
	RManifestLoadFailed  ReasonCode = "R_MANIFEST_LOAD_FAILED"
	RUnsupportedFormat   ReasonCode = "R_UNSUPPORTED_FORMAT"
	RDecodeFatal         ReasonCode = "R_DECODE_FATAL"
	RClientStop          ReasonCode = "R_CLIENT_STOP"
	RCancelled           ReasonCode = "R_CANCELLED"
	REndOfContent        ReasonCode = "R_END_OF_CONTENT"
)

// SessionRecord is the manager-owned source of truth for one playback
// attempt. Snapshot copies of it are what the control API serves.
type SessionRecord struct {
	SessionID        string       `json:"sessionId"`
	TitleID          string       `json:"titleId"`
	EpisodeID        string       `json:"episodeId,omitempty"`
	ManifestURL      string       `json:"manifestUrl,omitempty"`
	RequestedQuality QualityTier  `json:"requestedQuality"`
	EffectiveQuality QualityTier  `json:"effectiveQuality,omitempty"`
	State            SessionState `json:"state"`
	Reason           ReasonCode   `json:"reason,omitempty"`
	AdActive         bool         `json:"adActive"`
	PositionSeconds  float64      `json:"positionSeconds"`
	CreatedAtUnix    int64        `json:"createdAtUnix"`
	UpdatedAtUnix    int64        `json:"updatedAtUnix"`
}
