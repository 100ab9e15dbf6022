// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package headless

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

type recordingSink struct {
	mu    sync.Mutex
	ticks []float64
	ended bool
}

func (r *recordingSink) OnTimeUpdate(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, seconds)
}

func (r *recordingSink) OnContentEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = true
}

func (r *recordingSink) tickCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

func (r *recordingSink) endedSeen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

func TestDriverAdvancesOnlyWhilePlaying(t *testing.T) {
	surface := NewVirtualSurface(600)
	sink := &recordingSink{}
	d := NewDriver(surface, sink, 5*time.Millisecond)
	d.Run(context.Background())
	defer d.Stop()

	time.Sleep(30 * time.Millisecond)
	require.Zero(t, sink.tickCount())
	require.Zero(t, surface.Position())

	surface.Play()
	require.Eventually(t, func() bool {
		return sink.tickCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	surface.Pause()
	pos := surface.Position()
	count := sink.tickCount()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, pos, surface.Position())
	require.LessOrEqual(t, sink.tickCount(), count+1)
}

func TestDriverDeliversEndOfContent(t *testing.T) {
	surface := NewVirtualSurface(0.02)
	sink := &recordingSink{}
	d := NewDriver(surface, sink, 5*time.Millisecond)
	d.Run(context.Background())
	defer d.Stop()

	surface.Play()
	require.Eventually(t, sink.endedSeen, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 0.02, surface.Position())
	require.False(t, surface.Playing())
}

func TestVirtualSurfaceSeekClamps(t *testing.T) {
	surface := NewVirtualSurface(100)
	surface.Seek(-10)
	require.Zero(t, surface.Position())
	surface.Seek(500)
	require.Equal(t, float64(100), surface.Position())
}

func TestVirtualSurfaceBufferHorizon(t *testing.T) {
	surface := NewVirtualSurface(100)
	require.Equal(t, float64(30), surface.BufferedAhead())
	surface.Seek(90)
	require.InDelta(t, 10, surface.BufferedAhead(), 0.001)
}

func TestHTTPEngineValidatesManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXT-X-VERSION:3\n")) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngineFactory(nil)(model.Quality720p)
	defer engine.Destroy()
	require.True(t, engine.SupportsAdaptive())
	require.NoError(t, engine.Load(context.Background(), srv.URL, nil))
}

func TestHTTPEngineRejectsNonPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a manifest</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngineFactory(nil)(model.Quality720p)
	defer engine.Destroy()
	require.Error(t, engine.Load(context.Background(), srv.URL, nil))
}

func TestHTTPEngineRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	engine := NewEngineFactory(nil)(model.Quality720p)
	defer engine.Destroy()
	require.Error(t, engine.Load(context.Background(), srv.URL, nil))
}
