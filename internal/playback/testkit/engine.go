// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package testkit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// FakeEngine is a scriptable adaptive streaming engine.
type FakeEngine struct {
	Adaptive bool
	LoadErr  error
	Quality  model.QualityTier

	fatal       chan error
	destroyOnce sync.Once
	destroyed   atomic.Int32
	loaded      atomic.Int32
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Adaptive: true,
		fatal:    make(chan error, 1),
	}
}

func (e *FakeEngine) SupportsAdaptive() bool {
	return e.Adaptive
}

func (e *FakeEngine) Load(ctx context.Context, manifestURL string, surface ports.MediaSurface) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.LoadErr != nil {
		return e.LoadErr
	}
	e.loaded.Add(1)
	return nil
}

func (e *FakeEngine) Fatal() <-chan error {
	return e.fatal
}

func (e *FakeEngine) Destroy() {
	e.destroyOnce.Do(func() {
		close(e.fatal)
	})
	e.destroyed.Add(1)
}

// InjectFatal simulates an unrecoverable mid-playback decoder error.
func (e *FakeEngine) InjectFatal(err error) {
	e.fatal <- err
}

// DestroyCount reports how many times Destroy ran.
func (e *FakeEngine) DestroyCount() int32 {
	return e.destroyed.Load()
}

// Loaded reports how many manifests this engine parsed.
func (e *FakeEngine) Loaded() int32 {
	return e.loaded.Load()
}

// EngineRecorder hands out fake engines and remembers every instance and
// the quality each was built at.
type EngineRecorder struct {
	mu        sync.Mutex
	engines   []*FakeEngine
	qualities []model.QualityTier

	// Template fields copied onto each new engine.
	Adaptive bool
	LoadErr  error
}

func NewEngineRecorder() *EngineRecorder {
	return &EngineRecorder{Adaptive: true}
}

// Factory returns a ports.EngineFactory backed by this recorder.
func (r *EngineRecorder) Factory() ports.EngineFactory {
	return func(q model.QualityTier) ports.StreamEngine {
		r.mu.Lock()
		defer r.mu.Unlock()
		e := NewFakeEngine()
		e.Adaptive = r.Adaptive
		e.LoadErr = r.LoadErr
		e.Quality = q
		r.engines = append(r.engines, e)
		r.qualities = append(r.qualities, q)
		return e
	}
}

// Engines returns every engine the factory produced.
func (r *EngineRecorder) Engines() []*FakeEngine {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]*FakeEngine, len(r.engines))
	copy(cp, r.engines)
	return cp
}

// Qualities returns the attach qualities in creation order.
func (r *EngineRecorder) Qualities() []model.QualityTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]model.QualityTier, len(r.qualities))
	copy(cp, r.qualities)
	return cp
}

// Last returns the most recent engine, or nil.
func (r *EngineRecorder) Last() *FakeEngine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.engines) == 0 {
		return nil
	}
	return r.engines[len(r.engines)-1]
}
