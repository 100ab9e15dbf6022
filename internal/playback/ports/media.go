// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import (
	"context"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// MediaSurface is the decoder/audio pipeline. It is exclusively owned by
// the stream attachment while attached; the ad scheduler never touches it
// directly, only via the session manager's pause/resume.
type MediaSurface interface {
	Play()
	Pause()
	Seek(seconds float64)
	Position() float64
	Duration() float64

	SetVolume(v float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	SetFullscreen(on bool)
	Fullscreen() bool

	// BufferedAhead returns seconds of decodable media buffered past the
	// current position. Used for heartbeat buffer health.
	BufferedAhead() float64

	// CanPlayNativeHLS reports native adaptive support on the surface,
	// used as the fallback path when the engine lacks MSE-style support.
	CanPlayNativeHLS() bool

	// AssignDirect binds a manifest URL straight to the surface. Only
	// valid when CanPlayNativeHLS is true.
	AssignDirect(manifestURL string) error
}

// StreamEngine is one adaptive-streaming decoder instance. Engines are
// single-use: Load once, Destroy once.
type StreamEngine interface {
	// SupportsAdaptive reports whether the engine can do adaptive
	// streaming on this platform at all.
	SupportsAdaptive() bool

	// Load fetches and parses the manifest, returning once the manifest
	// is parsed or with a classified error.
	Load(ctx context.Context, manifestURL string, surface MediaSurface) error

	// Fatal delivers unrecoverable mid-playback errors. Transient
	// segment errors are retried inside the engine and never surface.
	Fatal() <-chan error

	// Destroy releases the engine and all buffered segments, closing the
	// Fatal channel. Idempotent.
	Destroy()
}

// EngineFactory builds a fresh engine per attach at the given quality.
type EngineFactory func(quality model.QualityTier) StreamEngine
