// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vodplayer/internal/entitlement"
	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/model"
)

func TestTogglePlayFlipsState(t *testing.T) {
	f := premiumFixture(t)
	f.start(t)

	require.NoError(t, f.mgr.TogglePlay())
	require.Equal(t, model.SessionPaused, f.mgr.State())
	require.False(t, f.surface.Playing())

	require.NoError(t, f.mgr.TogglePlay())
	require.Equal(t, model.SessionPlaying, f.mgr.State())
	require.True(t, f.surface.Playing())
}

func TestSeekClampsToContentBounds(t *testing.T) {
	f := premiumFixture(t)
	f.start(t)

	f.mgr.Seek(-5)
	require.Equal(t, float64(0), f.surface.Position())

	f.mgr.Seek(contentDuration + 100)
	require.Equal(t, float64(contentDuration), f.surface.Position())
}

func TestKeyboardShortcuts(t *testing.T) {
	f := premiumFixture(t)
	f.start(t)
	f.mgr.Seek(100)

	require.True(t, f.mgr.HandleKey("ArrowRight"))
	require.Equal(t, float64(110), f.surface.Position())
	require.True(t, f.mgr.HandleKey("ArrowLeft"))
	require.Equal(t, float64(100), f.surface.Position())

	require.True(t, f.mgr.HandleKey("m"))
	require.True(t, f.surface.Muted())
	require.True(t, f.mgr.HandleKey("f"))
	require.True(t, f.surface.Fullscreen())

	require.True(t, f.mgr.HandleKey("ArrowDown"))
	require.InDelta(t, 0.9, f.surface.Volume(), 0.001)
	require.True(t, f.mgr.HandleKey("ArrowUp"))
	require.InDelta(t, 1.0, f.surface.Volume(), 0.001)

	require.True(t, f.mgr.HandleKey("k"))
	require.Equal(t, model.SessionPaused, f.mgr.State())

	require.False(t, f.mgr.HandleKey("x"))
}

func TestSetQualityReattachesAtPosition(t *testing.T) {
	f := premiumFixture(t)
	require.NoError(t, f.mgr.Start(context.Background(), "title-1", "ep-1", model.Quality480p))
	f.mgr.Seek(120)

	require.NoError(t, f.mgr.SetQuality(model.Quality720p))

	require.Equal(t, []model.QualityTier{model.Quality480p, model.Quality720p}, f.engines.Qualities())
	first := f.engines.Engines()[0]
	require.GreaterOrEqual(t, first.DestroyCount(), int32(1))
	require.Equal(t, float64(120), f.surface.Position())
	require.Equal(t, model.SessionPlaying, f.mgr.State())
	require.True(t, f.surface.Playing())
	require.Equal(t, model.Quality720p, f.mgr.Snapshot().EffectiveQuality)
}

func TestSetQualityClampStaysPut(t *testing.T) {
	f := newFixture(t, entitlement.NewStatic(false, false, model.Quality720p))
	require.NoError(t, f.mgr.Start(context.Background(), "title-1", "ep-1", model.Quality720p))

	// 1080p clamps back to the ceiling the stream is already at: no
	// re-attach happens.
	require.NoError(t, f.mgr.SetQuality(model.Quality1080p))
	require.Len(t, f.engines.Qualities(), 1)
	require.Equal(t, model.Quality720p, f.mgr.Snapshot().EffectiveQuality)
	require.Equal(t, model.Quality1080p, f.mgr.Snapshot().RequestedQuality)
}

func TestSetQualityRejectsUnknownTier(t *testing.T) {
	f := premiumFixture(t)
	f.start(t)
	require.ErrorIs(t, f.mgr.SetQuality(model.QualityTier("8k")), lifecycle.ErrBadRequest)
}

func TestMarkerSkipFlow(t *testing.T) {
	f := premiumFixture(t)
	f.backend.MarkersList = []model.SceneMarker{
		{Type: model.MarkerIntro, StartTimeSeconds: 10, EndTimeSeconds: 90},
	}
	f.start(t)

	f.mgr.Seek(15)
	marker := f.mgr.ActiveMarker()
	require.NotNil(t, marker)
	require.Equal(t, model.MarkerIntro, marker.Type)

	require.True(t, f.mgr.SkipMarker())
	require.Equal(t, float64(90), f.surface.Position())

	// The window is half-open: at its end boundary nothing is active and
	// a second skip is a no-op.
	require.Nil(t, f.mgr.ActiveMarker())
	require.False(t, f.mgr.SkipMarker())
}

func TestMarkerFetchFailureDisablesSkips(t *testing.T) {
	f := premiumFixture(t)
	f.backend.MarkersErr = errors.New("marker service down")
	f.start(t)

	require.Equal(t, model.SessionPlaying, f.mgr.State())
	f.mgr.Seek(15)
	require.Nil(t, f.mgr.ActiveMarker())
	require.False(t, f.mgr.SkipMarker())
}
