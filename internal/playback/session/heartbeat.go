// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"time"

	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/metrics"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// startHeartbeatLocked spawns the telemetry loop. Called on every entry
// into Playing; the interval restarts from zero so paused or ad time
// never counts toward the next report.
func (m *Manager) startHeartbeatLocked() {
	if m.hbCancel != nil || m.netCtx == nil {
		return
	}
	ctx, cancel := context.WithCancel(m.netCtx)
	m.hbCancel = cancel
	go m.runHeartbeat(ctx, m.Backend, m.rec.SessionID)
}

// stopHeartbeatLocked cancels the loop without waiting for it. The loop
// takes m.mu to sample state, so waiting here would deadlock; a tick
// racing the cancel is harmless because the loop re-checks Playing
// under the lock before sending.
func (m *Manager) stopHeartbeatLocked() {
	if m.hbCancel == nil {
		return
	}
	m.hbCancel()
	m.hbCancel = nil
}

// runHeartbeat reports position and buffer health at a fixed cadence
// while the session is Playing. Sends are synchronous: a slow backend
// delays the next tick instead of stacking requests. Failures are
// logged and counted, never escalated.
func (m *Manager) runHeartbeat(ctx context.Context, backend ports.Backend, sessionID string) {
	ticker := time.NewTicker(m.HeartbeatEvery)
	defer ticker.Stop()

	logger := log.WithComponent("heartbeat").With().
		Str(log.FieldSessionID, sessionID).
		Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		if ctx.Err() != nil || m.rec.State != model.SessionPlaying || m.adActiveLocked() {
			m.mu.Unlock()
			metrics.RecordHeartbeat("skipped")
			continue
		}
		hb := model.Heartbeat{
			CurrentTimeSeconds:  m.Surface.Position(),
			BufferHealthSeconds: m.Surface.BufferedAhead(),
		}
		m.rec.PositionSeconds = hb.CurrentTimeSeconds
		m.mu.Unlock()

		if err := backend.Heartbeat(ctx, sessionID, hb); err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.RecordHeartbeat("failed")
			logger.Warn().Err(err).
				Float64(log.FieldPosition, hb.CurrentTimeSeconds).
				Msg("heartbeat send failed")
			continue
		}
		metrics.RecordHeartbeat("ok")
		logger.Debug().
			Float64(log.FieldPosition, hb.CurrentTimeSeconds).
			Float64("buffer_seconds", hb.BufferHealthSeconds).
			Msg("heartbeat sent")
	}
}
