// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vodplayer/internal/entitlement"
	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/session"
	"github.com/ManuGH/vodplayer/internal/playback/testkit"
)

// A stop that arrives while session creation is still in flight must win:
// the start resolves, playback never begins, and the session lands in
// Ended without leaking the half-created attempt.
func TestStopDuringStartIsHonored(t *testing.T) {
	backend := testkit.NewStepperBackend()
	surface := testkit.NewFakeSurface(contentDuration)
	engines := testkit.NewEngineRecorder()
	mgr := &session.Manager{
		Backend:      backend,
		Entitlements: entitlement.NewStatic(true, false, model.Quality4K),
		Ads:          &testkit.FakeAdProvider{},
		AdSurface:    &testkit.FakeAdSurface{},
		Surface:      surface,
		Engines:      engines.Factory(),
	}
	t.Cleanup(mgr.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- mgr.Start(context.Background(), "title-1", "ep-1", model.Quality1080p)
	}()

	select {
	case <-backend.StartCalled():
	case <-time.After(2 * time.Second):
		t.Fatal("backend StartSession was never entered")
	}

	require.NoError(t, mgr.Stop(context.Background()))

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, lifecycle.ErrSessionCanceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not resolve after Stop")
	}

	require.Equal(t, model.SessionEnded, mgr.State())
	require.Equal(t, model.RCancelled, mgr.Snapshot().Reason)
	require.False(t, surface.Playing())
	require.Empty(t, engines.Engines())
	require.Equal(t, int32(1), backend.StartCount())
	// The in-flight call was canceled, so no backend session exists and
	// no end call is owed.
	require.Equal(t, int32(0), backend.EndCount())

	// Further stops on the settled session stay quiet.
	require.NoError(t, mgr.Stop(context.Background()))
	require.Equal(t, int32(0), backend.EndCount())
}
