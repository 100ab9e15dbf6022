// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session hosts the playback session manager: the single entry
// and exit point for one playback attempt. It owns the backend session's
// lifetime and fans lifecycle events out to the scheduler, the stream
// attachment and the telemetry heartbeat.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/metrics"
	"github.com/ManuGH/vodplayer/internal/playback/ads"
	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/markers"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
	"github.com/ManuGH/vodplayer/internal/playback/quality"
	"github.com/ManuGH/vodplayer/internal/playback/stream"
)

// DefaultHeartbeatEvery is the telemetry reporting interval.
const DefaultHeartbeatEvery = 30 * time.Second

// endCallTimeout bounds the fire-and-forget session-end call so teardown
// cannot hang on a dead backend.
const endCallTimeout = 2 * time.Second

// Manager drives one playback attempt. Zero value is not usable; fill
// the exported dependency fields and call Start exactly once.
//
// All methods are safe for concurrent use. They are expected to be
// invoked from event callbacks (time updates, timer fires, user input)
// and never block beyond their own network call.
type Manager struct {
	Backend      ports.Backend
	Entitlements ports.Entitlements
	Ads          ports.AdProvider
	AdSurface    ports.AdSurface
	Surface      ports.MediaSurface
	Engines      ports.EngineFactory

	HeartbeatEvery time.Duration

	mu        sync.Mutex
	rec       model.SessionRecord
	attach    *stream.Attachment
	sched     *ads.Scheduler
	nav       *markers.Navigator
	logger    zerolog.Logger
	requested model.QualityTier
	ceiling   model.QualityTier

	// netCtx covers every in-flight network call and background watcher
	// for this session; canceled exactly once at teardown.
	netCtx    context.Context
	netCancel context.CancelFunc

	hbCancel context.CancelFunc

	startCalled   bool
	stopRequested bool
	endIssued     bool
	tornDown      bool
	contentEnded  bool
	resumePos     float64
}

// Start validates the request, creates the backend session and attaches
// the stream. Exactly one session-creation call is made per Manager. On
// success the session is Playing (or Ready behind a pending pre-roll);
// on failure the session is in its terminal Error state and a new
// Manager must be built for a retry.
func (m *Manager) Start(ctx context.Context, titleID, episodeID string, requested model.QualityTier) error {
	m.mu.Lock()
	if err := m.validateDeps(); err != nil {
		m.mu.Unlock()
		return err
	}
	if titleID == "" {
		m.mu.Unlock()
		return fmt.Errorf("%w: empty title id", lifecycle.ErrBadRequest)
	}
	if m.startCalled {
		m.mu.Unlock()
		return fmt.Errorf("%w: session already started", lifecycle.ErrBadRequest)
	}
	m.startCalled = true

	if m.rec.State == "" {
		m.rec.State = model.SessionIdle
	}
	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvStartRequested}); err != nil {
		m.mu.Unlock()
		return err
	}

	m.rec.TitleID = titleID
	m.rec.EpisodeID = episodeID
	m.rec.RequestedQuality = requested
	m.rec.CreatedAtUnix = time.Now().Unix()
	m.requested = requested
	m.netCtx, m.netCancel = context.WithCancel(context.Background())
	m.logger = log.WithComponent("session").With().
		Str(log.FieldTitleID, titleID).
		Str(log.FieldEpisodeID, episodeID).
		Logger()
	metrics.IncActiveSessions()
	netCtx := m.netCtx
	m.mu.Unlock()

	resp, startErr := m.Backend.StartSession(netCtx, ports.StartSessionRequest{
		TitleID:   titleID,
		EpisodeID: episodeID,
		Quality:   requested,
		Protocol:  "hls",
	})

	m.mu.Lock()
	if m.stopRequested || netCtx.Err() != nil {
		// The caller stopped us while session creation was in flight.
		// Honor it now: best-effort end, then immediate teardown, and
		// playback never begins.
		if startErr == nil {
			m.rec.SessionID = resp.SessionID
			m.endSessionLocked(0)
		}
		m.finalizeCanceledStartLocked()
		m.mu.Unlock()
		return lifecycle.ErrSessionCanceled
	}
	if startErr != nil {
		m.enterErrorLocked(model.RSessionCreateFailed, startErr)
		m.mu.Unlock()
		return fmt.Errorf("%w: create session: %v", lifecycle.ErrSessionFatal, startErr)
	}
	m.rec.SessionID = resp.SessionID
	m.rec.ManifestURL = resp.ManifestURL
	m.logger = m.logger.With().Str(log.FieldSessionID, resp.SessionID).Logger()
	m.mu.Unlock()

	nav, sched := m.loadCollaborators(netCtx, episodeID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopRequested || netCtx.Err() != nil {
		m.endSessionLocked(0)
		m.finalizeCanceledStartLocked()
		return lifecycle.ErrSessionCanceled
	}
	m.nav = nav
	m.sched = sched
	m.logger.Debug().Bool("ads_enabled", sched.Enabled()).Msg("collaborators loaded")

	m.ceiling = m.Entitlements.MaxQuality()
	effective := quality.Resolve(m.requested, m.ceiling)
	if quality.Capped(m.requested, m.ceiling) {
		metrics.RecordQualityCapped()
		m.logger.Info().
			Str("requested", string(m.requested)).
			Str("effective", string(effective)).
			Msg("requested quality above entitlement ceiling, clamping")
	}
	m.rec.EffectiveQuality = effective

	m.attach = stream.New(m.Engines)
	if err := m.attachLocked(netCtx, effective); err != nil {
		return err
	}

	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvManifestReady}); err != nil {
		return err
	}
	metrics.RecordSessionStart("ok")
	go m.watchFatal(netCtx)

	// Pre-roll gate: checked once, right after manifest-parsed and
	// before autoplay, so a late first tick can never skip it.
	if b := m.sched.ShouldTrigger(0); b != nil {
		m.beginAdLocked(b)
		return nil
	}
	return m.playLocked()
}

// Stop ends the session with a best-effort final position report. Safe
// to call from any state, any number of times; a Stop racing a Start in
// flight is honored as soon as the start call resolves.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.startCalled {
		return nil
	}
	if m.rec.State == model.SessionInitializing {
		if !m.stopRequested {
			m.stopRequested = true
			if m.netCancel != nil {
				m.netCancel()
			}
			m.logger.Info().Msg("stop requested while start in flight, deferring teardown")
		}
		return nil
	}
	if m.rec.State.IsTerminal() {
		// Error is terminal but the backend session may still be open;
		// make sure the final position got delivered.
		m.endSessionLocked(m.lastPositionLocked())
		return nil
	}

	m.endSessionLocked(m.lastPositionLocked())
	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvStopRequested}); err != nil {
		return err
	}
	m.teardownLocked()
	return nil
}

// State returns the current lifecycle state.
func (m *Manager) State() model.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec.State == "" {
		return model.SessionIdle
	}
	return m.rec.State
}

// Snapshot returns a copy of the session record for the control API.
func (m *Manager) Snapshot() model.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.rec
	if rec.State == "" {
		rec.State = model.SessionIdle
	}
	rec.AdActive = m.adActiveLocked()
	return rec
}

// Stats samples an observational QoE snapshot from the surface.
func (m *Manager) Stats() model.NetworkStats {
	m.mu.Lock()
	attached := m.attach != nil && m.attach.Attached()
	m.mu.Unlock()
	if !attached {
		return model.NetworkStats{}
	}
	buffered := m.Surface.BufferedAhead()
	pct := buffered / 30 * 100
	if pct > 100 {
		pct = 100
	}
	return model.NetworkStats{
		BufferHealthPct: pct,
	}
}

// OnTimeUpdate is the per-tick entry point from the media surface. It
// advances the recorded position and runs the ad trigger check. Ticks
// during an active ad are ignored: content is not advancing.
func (m *Manager) OnTimeUpdate(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec.State.IsTerminal() || m.adActiveLocked() {
		return
	}
	m.rec.PositionSeconds = t
	if m.rec.State != model.SessionPlaying {
		return
	}
	if b := m.sched.ShouldTrigger(t); b != nil {
		m.beginAdLocked(b)
	}
}

// OnContentEnded handles natural end of content: a pending post-roll
// fires first, then the session ends with a final position report.
func (m *Manager) OnContentEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec.State.IsTerminal() || m.adActiveLocked() || m.contentEnded {
		return
	}
	if m.rec.State != model.SessionPlaying && m.rec.State != model.SessionPaused {
		return
	}
	m.contentEnded = true
	m.rec.PositionSeconds = m.Surface.Duration()
	if b := m.sched.ShouldTrigger(m.rec.PositionSeconds); b != nil {
		m.beginAdLocked(b)
		return
	}
	m.finishContentLocked()
}

func (m *Manager) validateDeps() error {
	switch {
	case m.Backend == nil:
		return errors.New("Backend must be set")
	case m.Entitlements == nil:
		return errors.New("Entitlements must be set")
	case m.Ads == nil:
		return errors.New("Ads must be set")
	case m.AdSurface == nil:
		return errors.New("AdSurface must be set")
	case m.Surface == nil:
		return errors.New("Surface must be set")
	case m.Engines == nil:
		return errors.New("Engines must be set")
	}
	if m.HeartbeatEvery <= 0 {
		m.HeartbeatEvery = DefaultHeartbeatEvery
	}
	return nil
}

// loadCollaborators fetches markers and the ad timeline. Both are
// best-effort: a missing marker list or ad schedule degrades features,
// never the session.
func (m *Manager) loadCollaborators(ctx context.Context, episodeID string) (*markers.Navigator, *ads.Scheduler) {
	var ms []model.SceneMarker
	if episodeID != "" {
		var err error
		ms, err = m.Backend.Markers(ctx, episodeID)
		if err != nil {
			m.logger.Warn().Err(err).Msg("marker fetch failed, skip affordances disabled")
			ms = nil
		}
	}

	breaks, err := m.Ads.Schedule(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("ad schedule fetch failed, session continues ad-free")
		breaks = nil
	}
	return markers.New(ms), ads.NewScheduler(breaks, m.Ads, m.Entitlements.ShouldShowAds())
}

func (m *Manager) attachLocked(ctx context.Context, effective model.QualityTier) error {
	err := m.attach.Attach(ctx, m.rec.ManifestURL, m.Surface, effective)
	if err == nil {
		return nil
	}
	reason := model.RManifestLoadFailed
	if errors.Is(err, lifecycle.ErrUnsupported) {
		reason = model.RUnsupportedFormat
	}
	m.enterErrorLocked(reason, err)
	return err
}

func (m *Manager) dispatchLocked(ev lifecycle.Event) (lifecycle.Transition, error) {
	from := m.rec.State
	tr, err := lifecycle.Dispatch(&m.rec, ev, time.Now())
	if err != nil {
		return tr, err
	}
	metrics.RecordTransition(string(from), string(tr.To))
	m.logger.Debug().
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(tr.To)).
		Msg("session transition")
	return tr, nil
}

func (m *Manager) playLocked() error {
	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvPlay}); err != nil {
		return err
	}
	m.Surface.Play()
	m.startHeartbeatLocked()
	return nil
}

func (m *Manager) pauseLocked() error {
	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvPause}); err != nil {
		return err
	}
	m.Surface.Pause()
	m.stopHeartbeatLocked()
	return nil
}

func (m *Manager) finishContentLocked() {
	m.endSessionLocked(m.rec.PositionSeconds)
	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvEnded}); err != nil {
		m.logger.Warn().Err(err).Msg("end-of-content transition refused")
	}
	m.teardownLocked()
}

// enterErrorLocked is the single path into the terminal Error state.
// The session-end call is deliberately NOT issued here: the caller's
// Stop/unmount delivers the final position, matching the one-end-call
// budget.
func (m *Manager) enterErrorLocked(reason model.ReasonCode, cause error) {
	if m.rec.State.IsTerminal() {
		return
	}
	metrics.RecordPlaybackError(string(reason))
	if m.rec.State == model.SessionInitializing {
		metrics.RecordSessionStart("failed")
	}
	m.logger.Error().Err(cause).Str(log.FieldReason, string(reason)).Msg("session fatal")
	if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvFatalError, Reason: reason}); err != nil {
		m.logger.Error().Err(err).Msg("error transition refused")
	}
	m.teardownLocked()
}

// finalizeCanceledStartLocked completes the stop-during-start race on
// the start goroutine once the in-flight call has resolved.
func (m *Manager) finalizeCanceledStartLocked() {
	if m.rec.State == model.SessionInitializing {
		if _, err := m.dispatchLocked(lifecycle.Event{Kind: lifecycle.EvStopRequested, Reason: model.RCancelled}); err != nil {
			m.logger.Warn().Err(err).Msg("cancel transition refused")
		}
	}
	metrics.RecordSessionStart("cancel")
	m.teardownLocked()
}

// endSessionLocked issues the at-most-once session-end call. It runs
// synchronously with its own short deadline so the backend always has a
// best-effort final position before any teardown proceeds. Failure is
// logged, never fatal.
func (m *Manager) endSessionLocked(lastPosition float64) {
	if m.endIssued || m.rec.SessionID == "" {
		return
	}
	m.endIssued = true
	ctx, cancel := context.WithTimeout(context.Background(), endCallTimeout)
	defer cancel()
	if err := m.Backend.EndSession(ctx, m.rec.SessionID, lastPosition); err != nil {
		m.logger.Warn().Err(err).
			Float64(log.FieldPosition, lastPosition).
			Msg("session end call failed")
		return
	}
	m.logger.Info().Float64(log.FieldPosition, lastPosition).Msg("session ended")
}

// teardownLocked releases everything this session holds, in contract
// order: heartbeat timer, ad countdown, streaming engine, in-flight
// network calls. Idempotent.
func (m *Manager) teardownLocked() {
	if m.tornDown {
		return
	}
	m.tornDown = true

	m.stopHeartbeatLocked()
	if m.sched != nil {
		m.sched.CancelActive()
	}
	m.AdSurface.Hide()
	m.rec.AdActive = false
	if m.attach != nil {
		m.attach.Detach()
	}
	if m.netCancel != nil {
		m.netCancel()
	}
	metrics.DecActiveSessions()
}

func (m *Manager) lastPositionLocked() float64 {
	if m.attach != nil && m.attach.Attached() {
		return m.Surface.Position()
	}
	return m.rec.PositionSeconds
}

func (m *Manager) adActiveLocked() bool {
	return m.sched != nil && m.sched.Active() != nil
}

// watchFatal promotes unrecoverable decoder errors into the terminal
// Error state. Transient segment errors never reach this channel.
func (m *Manager) watchFatal(ctx context.Context) {
	m.mu.Lock()
	attach := m.attach
	m.mu.Unlock()
	if attach == nil {
		return
	}
	select {
	case <-ctx.Done():
		return
	case err, ok := <-attach.Fatal():
		if !ok || err == nil {
			return
		}
		m.mu.Lock()
		m.enterErrorLocked(model.RDecodeFatal, err)
		m.mu.Unlock()
	}
}
