// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ManuGH/vodplayer/internal/playback/lifecycle"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = "https://cdn.example.com/m/42.m3u8"

func TestAttachLoadsManifest(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)

	require.NoError(t, a.Attach(context.Background(), manifest, surface, model.Quality720p))
	assert.True(t, a.Attached())

	engine := rec.Last()
	require.NotNil(t, engine)
	assert.Equal(t, int32(1), engine.Loaded())
	assert.Equal(t, model.Quality720p, engine.Quality)

	a.Detach()
	assert.False(t, a.Attached())
	assert.Equal(t, int32(1), engine.DestroyCount())
}

func TestAttachOverAttachTearsDownPriorEngine(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)

	require.NoError(t, a.Attach(context.Background(), manifest, surface, model.Quality1080p))
	first := rec.Last()

	require.NoError(t, a.Attach(context.Background(), manifest, surface, model.Quality720p))
	assert.Equal(t, int32(1), first.DestroyCount())

	engines := rec.Engines()
	require.Len(t, engines, 2)
	assert.Equal(t, int32(1), engines[1].Loaded())

	a.Detach()
}

func TestDetachIsIdempotent(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)

	require.NoError(t, a.Attach(context.Background(), manifest, surface, model.Quality720p))
	a.Detach()
	a.Detach()
	assert.Equal(t, int32(1), rec.Last().DestroyCount())
}

func TestManifestLoadFailureIsSessionFatal(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	rec.LoadErr = errors.New("404 playlist not found")
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)

	err := a.Attach(context.Background(), manifest, surface, model.Quality720p)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrSessionFatal)
	assert.False(t, a.Attached())
	assert.Equal(t, int32(1), rec.Last().DestroyCount())
}

func TestNoAdaptiveSupportFallsBackToNativeHLS(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	rec.Adaptive = false
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)
	surface.SetNativeHLS(true)

	require.NoError(t, a.Attach(context.Background(), manifest, surface, model.Quality720p))
	assert.True(t, a.Attached())
	assert.Equal(t, []string{manifest}, surface.DirectAssignments())

	a.Detach()
}

func TestNoAdaptiveAndNoNativeSupportIsUnsupported(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	rec.Adaptive = false
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)

	err := a.Attach(context.Background(), manifest, surface, model.Quality720p)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrUnsupported)
	assert.False(t, a.Attached())
	assert.Empty(t, surface.DirectAssignments())
}

func TestEngineFatalIsForwardedClassified(t *testing.T) {
	rec := testkit.NewEngineRecorder()
	a := New(rec.Factory())
	surface := testkit.NewFakeSurface(3600)

	require.NoError(t, a.Attach(context.Background(), manifest, surface, model.Quality720p))
	rec.Last().InjectFatal(errors.New("keyframe decode failed"))

	select {
	case err := <-a.Fatal():
		assert.ErrorIs(t, err, lifecycle.ErrDecodeFatal)
	case <-time.After(time.Second):
		t.Fatal("fatal not forwarded")
	}

	a.Detach()
}
