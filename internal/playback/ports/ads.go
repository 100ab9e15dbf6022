// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import (
	"context"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// AdProvider supplies the per-session ad timeline and rendering config.
// It is an external scheduling service treated as a black box; the
// scheduler owns trigger policy and at-most-once firing on top of it.
type AdProvider interface {
	// Schedule returns the ordered ad-break timeline for one session.
	// Built once per session.
	Schedule(ctx context.Context) ([]model.AdBreak, error)

	// Config returns rendering parameters for the given break.
	Config(b model.AdBreak) model.AdConfig
}

// AdSurface renders the active ad creative. A Show error means the
// creative cannot render; the caller treats that as instant completion
// so an ad failure never blocks content.
type AdSurface interface {
	Show(cfg model.AdConfig) error
	Hide()
}
