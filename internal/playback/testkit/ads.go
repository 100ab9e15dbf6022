// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package testkit

import (
	"context"
	"sync"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// FakeAdProvider serves a fixed timeline and config.
type FakeAdProvider struct {
	BreaksList  []model.AdBreak
	Cfg         model.AdConfig
	ScheduleErr error
}

func (p *FakeAdProvider) Schedule(ctx context.Context) ([]model.AdBreak, error) {
	if p.ScheduleErr != nil {
		return nil, p.ScheduleErr
	}
	cp := make([]model.AdBreak, len(p.BreaksList))
	copy(cp, p.BreaksList)
	return cp, nil
}

func (p *FakeAdProvider) Config(b model.AdBreak) model.AdConfig {
	return p.Cfg
}

// FakeAdSurface records show/hide calls. A non-nil ShowErr simulates an
// ad creative that cannot render.
type FakeAdSurface struct {
	ShowErr error

	mu    sync.Mutex
	shown []model.AdConfig
	hides int
}

func (s *FakeAdSurface) Show(cfg model.AdConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ShowErr != nil {
		return s.ShowErr
	}
	s.shown = append(s.shown, cfg)
	return nil
}

func (s *FakeAdSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hides++
}

// ShowCount reports successfully rendered ads.
func (s *FakeAdSurface) ShowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shown)
}

// HideCount reports how many times the surface was dismissed.
func (s *FakeAdSurface) HideCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hides
}
