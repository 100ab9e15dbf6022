// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldTitleID   = "title_id"
	FieldEpisodeID = "episode_id"
	FieldAdBreakID = "ad_break_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldReason   = "reason"

	// Media fields
	FieldQuality     = "quality"
	FieldManifestURL = "manifest_url"
	FieldPosition    = "position_seconds"
)
