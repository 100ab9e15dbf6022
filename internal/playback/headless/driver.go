// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package headless

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// DefaultTickEvery is the content clock resolution.
const DefaultTickEvery = 500 * time.Millisecond

// SessionSink is the slice of the session manager the driver feeds.
type SessionSink interface {
	OnTimeUpdate(seconds float64)
	OnContentEnded()
}

// Driver is the content clock: it advances the virtual surface while it
// is playing and delivers time updates and end-of-content to the
// session manager, the way a real decoder would emit playback events.
type Driver struct {
	surface *VirtualSurface
	sink    SessionSink
	every   time.Duration

	stopOnce sync.Once
	stop     context.CancelFunc
	done     chan struct{}
}

// NewDriver builds a driver; a zero tick selects the default.
func NewDriver(surface *VirtualSurface, sink SessionSink, every time.Duration) *Driver {
	if every <= 0 {
		every = DefaultTickEvery
	}
	return &Driver{surface: surface, sink: sink, every: every}
}

// Run starts the clock goroutine. It stops on ctx cancel, Stop, or end
// of content.
func (d *Driver) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.stop = cancel
	d.done = make(chan struct{})
	go d.loop(ctx)
}

// Stop halts the clock and waits for the loop to exit.
func (d *Driver) Stop() {
	if d.stop == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stop()
		<-d.done
	})
}

func (d *Driver) loop(ctx context.Context) {
	defer close(d.done)
	ticker := time.NewTicker(d.every)
	defer ticker.Stop()

	step := d.every.Seconds()
	logger := log.WithComponent("driver")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pos, playing, ended := d.surface.advance(step)
		if ended {
			// The final tick goes through OnContentEnded only, so a
			// post-roll break fires exactly once from the end path.
			logger.Info().Float64(log.FieldPosition, pos).Msg("content clock reached end")
			d.sink.OnContentEnded()
			return
		}
		if playing {
			d.sink.OnTimeUpdate(pos)
		}
	}
}

// LogAdSurface renders ad breaks into the log stream. The headless
// daemon has no screen; observability is the rendering.
type LogAdSurface struct {
	mu     sync.Mutex
	active bool
}

func (s *LogAdSurface) Show(cfg model.AdConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	logger := log.WithComponent("adsurface")
	logger.Info().
		Str("provider", cfg.Provider).
		Float64("duration_seconds", cfg.DurationSeconds).
		Msg("ad break on screen")
	return nil
}

func (s *LogAdSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	logger := log.WithComponent("adsurface")
	logger.Info().Msg("ad break dismissed")
}
