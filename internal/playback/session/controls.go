// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"fmt"

	"github.com/ManuGH/vodplayer/internal/metrics"
	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/quality"
)

const (
	seekStepSeconds = 10
	volumeStep      = 0.1
)

// TogglePlay flips Playing/Paused. Inert during an active ad and outside
// playback states.
func (m *Manager) TogglePlay() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adActiveLocked() {
		return nil
	}
	switch m.rec.State {
	case model.SessionPlaying:
		return m.pauseLocked()
	case model.SessionPaused, model.SessionReady:
		return m.playLocked()
	default:
		return nil
	}
}

// Seek jumps to an absolute content position. Inert during an ad: seeks
// must never shorten or escape a break.
func (m *Manager) Seek(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adActiveLocked() || !m.playableLocked() {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	m.Surface.Seek(seconds)
	m.rec.PositionSeconds = m.Surface.Position()
}

// SeekBy jumps relative to the current position.
func (m *Manager) SeekBy(delta float64) {
	m.mu.Lock()
	pos := m.lastPositionLocked()
	m.mu.Unlock()
	m.Seek(pos + delta)
}

// SetVolume clamps into [0,1] and applies to the surface.
func (m *Manager) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playableLocked() {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.Surface.SetVolume(v)
}

// ToggleMute flips the surface mute flag.
func (m *Manager) ToggleMute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playableLocked() {
		return
	}
	m.Surface.SetMuted(!m.Surface.Muted())
}

// ToggleFullscreen flips the surface fullscreen flag.
func (m *Manager) ToggleFullscreen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playableLocked() {
		return
	}
	m.Surface.SetFullscreen(!m.Surface.Fullscreen())
}

// SetQuality re-resolves the effective tier and re-attaches the stream
// when it changes, resuming from the current position. An out-of-range
// request is clamped, never silently ignored.
func (m *Manager) SetQuality(requested model.QualityTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !requested.Known() {
		return fmt.Errorf("%w: unknown quality %q", lifecycle.ErrBadRequest, requested)
	}
	if m.adActiveLocked() || !m.playableLocked() {
		return fmt.Errorf("%w: no active playback", lifecycle.ErrBadRequest)
	}

	m.requested = requested
	m.rec.RequestedQuality = requested
	effective := quality.Resolve(requested, m.ceiling)
	if quality.Capped(requested, m.ceiling) {
		metrics.RecordQualityCapped()
	}
	if effective == m.rec.EffectiveQuality {
		return nil
	}

	pos := m.Surface.Position()
	wasPlaying := m.rec.State == model.SessionPlaying
	if wasPlaying {
		if err := m.pauseLocked(); err != nil {
			return err
		}
	}

	if err := m.attachLocked(m.netCtx, effective); err != nil {
		return err
	}
	m.rec.EffectiveQuality = effective
	m.Surface.Seek(pos)
	m.logger.Info().
		Str("effective", string(effective)).
		Float64("position_seconds", pos).
		Msg("stream re-attached at new quality")

	if wasPlaying {
		return m.playLocked()
	}
	return nil
}

// ActiveMarker returns the scene window containing the playhead, or nil.
func (m *Manager) ActiveMarker() *model.SceneMarker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nav == nil || m.adActiveLocked() {
		return nil
	}
	return m.nav.ActiveMarker(m.lastPositionLocked())
}

// SkipMarker seeks past the active scene window. Idempotent: no active
// window is a no-op.
func (m *Manager) SkipMarker() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nav == nil || m.adActiveLocked() || !m.playableLocked() {
		return false
	}
	marker := m.nav.ActiveMarker(m.lastPositionLocked())
	if !m.nav.Skip(m.Surface, marker) {
		return false
	}
	m.rec.PositionSeconds = m.Surface.Position()
	return true
}

// HandleKey dispatches a keyboard shortcut. All shortcuts are disabled
// while an ad is active. Returns whether the key was handled.
func (m *Manager) HandleKey(key string) bool {
	m.mu.Lock()
	if m.adActiveLocked() {
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	switch key {
	case " ", "k":
		_ = m.TogglePlay()
	case "f":
		m.ToggleFullscreen()
	case "m":
		m.ToggleMute()
	case "ArrowRight":
		m.SeekBy(seekStepSeconds)
	case "ArrowLeft":
		m.SeekBy(-seekStepSeconds)
	case "ArrowUp":
		m.adjustVolume(volumeStep)
	case "ArrowDown":
		m.adjustVolume(-volumeStep)
	default:
		return false
	}
	return true
}

func (m *Manager) adjustVolume(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playableLocked() {
		return
	}
	v := m.Surface.Volume() + delta
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.Surface.SetVolume(v)
}

// playableLocked reports whether the surface is attached and the session
// is in a state where user controls make sense.
func (m *Manager) playableLocked() bool {
	switch m.rec.State {
	case model.SessionReady, model.SessionPlaying, model.SessionPaused:
		return m.attach != nil && m.attach.Attached()
	default:
		return false
	}
}

// Close is the unmount/navigation-away hook: a Stop that ignores ctx
// plumbing for callers tearing the whole player down.
func (m *Manager) Close() {
	_ = m.Stop(context.Background())
}
