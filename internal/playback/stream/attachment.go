// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package stream binds a manifest URL to the media surface through an
// adaptive streaming engine and classifies decode errors.
package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// Attachment owns at most one engine instance at a time. The media
// surface belongs to the attachment while attached.
type Attachment struct {
	factory ports.EngineFactory

	mu       sync.Mutex
	engine   ports.StreamEngine
	surface  ports.MediaSurface
	direct   bool
	attached bool

	fatal    chan error
	pumpDone chan struct{}
}

// New builds an attachment around an engine factory. A fresh engine is
// created per Attach so buffered segments never leak across sessions.
func New(factory ports.EngineFactory) *Attachment {
	return &Attachment{
		factory: factory,
		fatal:   make(chan error, 1),
	}
}

// Attach loads the manifest at the effective quality and returns once it
// is parsed. Any prior engine is torn down first: attach-over-attach is a
// contract violation upstream, but we fail safe rather than leak.
//
// Errors are classified: manifest/load failures wrap ErrSessionFatal,
// missing platform support wraps ErrUnsupported.
func (a *Attachment) Attach(ctx context.Context, manifestURL string, surface ports.MediaSurface, quality model.QualityTier) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.detachLocked()

	engine := a.factory(quality)
	if !engine.SupportsAdaptive() {
		engine.Destroy()
		if !surface.CanPlayNativeHLS() {
			return fmt.Errorf("%w: no adaptive engine and no native HLS on surface", lifecycle.ErrUnsupported)
		}
		if err := surface.AssignDirect(manifestURL); err != nil {
			return fmt.Errorf("%w: native assignment: %v", lifecycle.ErrSessionFatal, err)
		}
		a.surface = surface
		a.direct = true
		a.attached = true
		logger := log.WithComponent("stream")
		logger.Debug().Str("manifest_url", manifestURL).Msg("attached via native HLS fallback")
		return nil
	}

	if err := engine.Load(ctx, manifestURL, surface); err != nil {
		engine.Destroy()
		return fmt.Errorf("%w: manifest load: %v", lifecycle.ErrSessionFatal, err)
	}

	a.engine = engine
	a.surface = surface
	a.direct = false
	a.attached = true

	done := make(chan struct{})
	a.pumpDone = done
	go a.pumpFatal(engine, done)

	return nil
}

// Fatal delivers unrecoverable decode errors from the live engine.
// Transient segment stalls are absorbed inside the engine and never
// appear here.
func (a *Attachment) Fatal() <-chan error {
	return a.fatal
}

// Detach destroys the engine instance and all buffered segments.
// Idempotent: a second Detach is a no-op.
func (a *Attachment) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detachLocked()
}

// Attached reports whether a surface is currently bound.
func (a *Attachment) Attached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached
}

func (a *Attachment) detachLocked() {
	if !a.attached {
		return
	}
	if a.engine != nil {
		a.engine.Destroy()
		a.engine = nil
	}
	if a.pumpDone != nil {
		<-a.pumpDone
		a.pumpDone = nil
	}
	a.surface = nil
	a.direct = false
	a.attached = false
}

// pumpFatal forwards engine fatals until the engine's channel closes on
// Destroy. The buffer is 1 and extra fatals are dropped: the first fatal
// already kills the session.
func (a *Attachment) pumpFatal(engine ports.StreamEngine, done chan struct{}) {
	defer close(done)
	for err := range engine.Fatal() {
		if err == nil {
			continue
		}
		classified := fmt.Errorf("%w: %v", lifecycle.ErrDecodeFatal, err)
		select {
		case a.fatal <- classified:
		default:
			logger := log.WithComponent("stream")
			logger.Debug().Err(err).Msg("dropping redundant engine fatal")
		}
	}
}
