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

// StepperBackend is a scriptable backend. StartSession can be gated so a
// test holds the session-creation call in flight while it races Stop
// against it.
type StepperBackend struct {
	SessionID    string
	ManifestURL  string
	StartErr     error
	HeartbeatErr error
	EndErr       error
	MarkersList  []model.SceneMarker
	MarkersErr   error

	startCalled  chan struct{}
	startRelease chan struct{}
	startOnce    sync.Once
	releaseOnce  sync.Once

	startCount     atomic.Int32
	endCount       atomic.Int32
	heartbeatCount atomic.Int32

	mu         sync.Mutex
	heartbeats []model.Heartbeat
	endPos     []float64
}

// NewStepperBackend gates StartSession until AllowStart.
func NewStepperBackend() *StepperBackend {
	return &StepperBackend{
		SessionID:    "sess-1",
		ManifestURL:  "https://cdn.example.com/m/1.m3u8",
		startCalled:  make(chan struct{}),
		startRelease: make(chan struct{}),
	}
}

// NewImmediateBackend resolves StartSession without gating.
func NewImmediateBackend() *StepperBackend {
	b := NewStepperBackend()
	b.AllowStart()
	return b
}

func (b *StepperBackend) StartSession(ctx context.Context, req ports.StartSessionRequest) (ports.StartSessionResponse, error) {
	b.startCount.Add(1)
	b.startOnce.Do(func() { close(b.startCalled) })
	select {
	case <-b.startRelease:
	case <-ctx.Done():
		return ports.StartSessionResponse{}, ctx.Err()
	}
	if b.StartErr != nil {
		return ports.StartSessionResponse{}, b.StartErr
	}
	return ports.StartSessionResponse{SessionID: b.SessionID, ManifestURL: b.ManifestURL}, nil
}

func (b *StepperBackend) Heartbeat(ctx context.Context, sessionID string, hb model.Heartbeat) error {
	b.heartbeatCount.Add(1)
	b.mu.Lock()
	b.heartbeats = append(b.heartbeats, hb)
	b.mu.Unlock()
	return b.HeartbeatErr
}

func (b *StepperBackend) EndSession(ctx context.Context, sessionID string, lastPositionSeconds float64) error {
	b.endCount.Add(1)
	b.mu.Lock()
	b.endPos = append(b.endPos, lastPositionSeconds)
	b.mu.Unlock()
	return b.EndErr
}

func (b *StepperBackend) Markers(ctx context.Context, episodeID string) ([]model.SceneMarker, error) {
	if b.MarkersErr != nil {
		return nil, b.MarkersErr
	}
	return b.MarkersList, nil
}

// StartCalled closes once StartSession has been entered.
func (b *StepperBackend) StartCalled() <-chan struct{} {
	return b.startCalled
}

// AllowStart releases the gated StartSession call.
func (b *StepperBackend) AllowStart() {
	b.releaseOnce.Do(func() { close(b.startRelease) })
}

func (b *StepperBackend) StartCount() int32     { return b.startCount.Load() }
func (b *StepperBackend) EndCount() int32       { return b.endCount.Load() }
func (b *StepperBackend) HeartbeatCount() int32 { return b.heartbeatCount.Load() }

// EndPositions returns every reported final position.
func (b *StepperBackend) EndPositions() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]float64, len(b.endPos))
	copy(cp, b.endPos)
	return cp
}

// Heartbeats returns every reported payload.
func (b *StepperBackend) Heartbeats() []model.Heartbeat {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]model.Heartbeat, len(b.heartbeats))
	copy(cp, b.heartbeats)
	return cp
}
