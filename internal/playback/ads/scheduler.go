// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ads owns the ad-break state machine: a discrete trigger list
// synchronized against playback time, with content/ad exclusivity.
package ads

import (
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// ActiveAd is the currently showing break plus its countdown.
type ActiveAd struct {
	Break     model.AdBreak
	Config    model.AdConfig
	Countdown *Countdown
}

// Scheduler scans the unshown break list per playback tick. At most one
// break is pending-or-active at a time; a trigger detected while an ad is
// already showing is dropped, not queued, since catching up would stack
// ads back to back.
type Scheduler struct {
	mu       sync.Mutex
	enabled  bool
	breaks   []model.AdBreak
	provider ports.AdProvider
	active   *ActiveAd
}

// NewScheduler snapshots the timeline and the eligibility gate. The gate
// is evaluated exactly once per session: an entitlement upgrade while
// playing takes effect on the next session.
func NewScheduler(breaks []model.AdBreak, provider ports.AdProvider, showAds bool) *Scheduler {
	cp := make([]model.AdBreak, len(breaks))
	copy(cp, breaks)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].TriggerTimeSeconds < cp[j].TriggerTimeSeconds
	})
	return &Scheduler{
		enabled:  showAds,
		breaks:   cp,
		provider: provider,
	}
}

// Enabled reports the per-session eligibility snapshot.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// ShouldTrigger returns the first unshown break due at t, or nil.
// Breaks are evaluated in trigger-time order as the clock advances, so
// triggers are never reordered relative to playback time.
func (s *Scheduler) ShouldTrigger(t float64) *model.AdBreak {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.active != nil {
		return nil
	}
	for i := range s.breaks {
		if s.breaks[i].Shown {
			continue
		}
		if t >= s.breaks[i].TriggerTimeSeconds {
			b := s.breaks[i]
			return &b
		}
	}
	return nil
}

// Begin activates the break and builds its countdown. Returns nil when
// another break is already pending-or-active or the scheduler is inert.
func (s *Scheduler) Begin(b model.AdBreak) *ActiveAd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.active != nil {
		return nil
	}
	cfg := model.AdConfig{}
	if s.provider != nil {
		cfg = s.provider.Config(b)
	}
	s.active = &ActiveAd{
		Break:     b,
		Config:    cfg,
		Countdown: NewCountdown(time.Duration(cfg.DurationSeconds * float64(time.Second))),
	}
	return s.active
}

// Active returns the showing break, or nil.
func (s *Scheduler) Active() *ActiveAd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SkipAvailable reports whether the active ad may be skipped yet.
func (s *Scheduler) SkipAvailable() bool {
	s.mu.Lock()
	a := s.active
	s.mu.Unlock()
	if a == nil {
		return false
	}
	return a.Countdown.Elapsed().Seconds() >= a.Break.SkippableAfterSeconds
}

// CompleteActive marks the active break shown and releases the slot.
// Used for natural end, explicit skip and ad-load failure alike: all
// three count the break as consumed so it can never fire again.
func (s *Scheduler) CompleteActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return
	}
	s.active.Countdown.Cancel()
	s.markShownLocked(s.active.Break.ID)
	s.active = nil
}

// Breaks returns a copy of the timeline for inspection.
func (s *Scheduler) Breaks() []model.AdBreak {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]model.AdBreak, len(s.breaks))
	copy(cp, s.breaks)
	return cp
}

// CancelActive drops the active slot without marking the break shown.
// Teardown-only: the session is over, at-most-once no longer matters.
func (s *Scheduler) CancelActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return
	}
	s.active.Countdown.Cancel()
	s.active = nil
}

func (s *Scheduler) markShownLocked(id string) {
	for i := range s.breaks {
		if s.breaks[i].ID == id {
			// Monotonic: false -> true, never back.
			s.breaks[i].Shown = true
			return
		}
	}
}
