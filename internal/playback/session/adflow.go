// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/metrics"
	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// beginAdLocked pauses content and hands control to the ad surface. The
// scheduler never touches the decoder itself: this indirection is what
// enforces the content/ad exclusivity invariant.
func (m *Manager) beginAdLocked(b *model.AdBreak) {
	active := m.sched.Begin(*b)
	if active == nil {
		return
	}

	m.resumePos = m.Surface.Position()
	if m.rec.State == model.SessionPlaying {
		if err := m.pauseLocked(); err != nil {
			m.logger.Warn().Err(err).Msg("pause for ad refused")
		}
	} else {
		// Pre-roll path: content never started, but the decoder must
		// stay parked and telemetry silent while the ad runs.
		m.Surface.Pause()
		m.stopHeartbeatLocked()
	}
	m.rec.AdActive = true

	logger := m.logger.With().
		Str(log.FieldAdBreakID, b.ID).
		Str("break_type", string(b.Type)).
		Logger()

	if err := m.AdSurface.Show(active.Config); err != nil {
		// An ad that cannot render behaves as if it completed
		// instantly; content is never held hostage by a creative.
		logger.Warn().Err(err).Msg("ad surface failed, treating break as shown")
		m.finishAdLocked("failed")
		return
	}
	logger.Info().Float64("duration_seconds", active.Config.DurationSeconds).Msg("ad break started")
	active.Countdown.Start()

	done := active.Countdown.Done()
	ctx := m.netCtx
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			m.completeAd()
		}
	}()
}

// completeAd handles natural countdown expiry.
func (m *Manager) completeAd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.adActiveLocked() {
		return
	}
	m.finishAdLocked("completed")
}

// SkipAd skips the active ad once its skip threshold has elapsed.
// Returns false when no ad is active or skipping is not yet allowed.
func (m *Manager) SkipAd() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.adActiveLocked() || !m.sched.SkipAvailable() {
		return false
	}
	m.finishAdLocked("skipped")
	return true
}

// AdSkippable reports whether the active ad can be skipped right now.
func (m *Manager) AdSkippable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adActiveLocked() && m.sched.SkipAvailable()
}

// AdRemaining returns seconds left in the active ad, or 0.
func (m *Manager) AdRemaining() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.adActiveLocked() {
		return 0
	}
	return m.sched.Active().Countdown.Remaining().Seconds()
}

// finishAdLocked marks the break shown, dismisses the ad surface and
// resumes content from the exact position it was paused at. Content is
// never fast-forwarded past the break.
func (m *Manager) finishAdLocked(outcome string) {
	active := m.sched.Active()
	if active == nil {
		return
	}
	metrics.RecordAdBreak(string(active.Break.Type), outcome)
	m.sched.CompleteActive()
	m.AdSurface.Hide()
	m.rec.AdActive = false
	m.logger.Info().
		Str(log.FieldAdBreakID, active.Break.ID).
		Str("outcome", outcome).
		Msg("ad break finished")

	if m.rec.State.IsTerminal() {
		return
	}
	if m.contentEnded {
		m.finishContentLocked()
		return
	}

	m.Surface.Seek(m.resumePos)
	if err := m.playLocked(); err != nil {
		m.logger.Warn().Err(err).Msg("resume after ad refused")
	}
}
