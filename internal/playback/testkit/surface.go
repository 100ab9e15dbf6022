// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package testkit provides channel-synchronized fakes for playback
// collaborators. It is a real package (not _test) so every playback
// package can share one set of fakes.
package testkit

import "sync"

// FakeSurface is an in-memory media surface. Position advances only via
// Advance, so tests control the clock of content time precisely.
type FakeSurface struct {
	mu         sync.Mutex
	position   float64
	duration   float64
	playing    bool
	volume     float64
	muted      bool
	fullscreen bool
	buffered   float64
	nativeHLS  bool

	seeks    []float64
	directTo []string
}

// NewFakeSurface builds a paused surface with the given content length.
func NewFakeSurface(duration float64) *FakeSurface {
	return &FakeSurface{duration: duration, volume: 1}
}

func (f *FakeSurface) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
}

func (f *FakeSurface) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *FakeSurface) Seek(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	if seconds < 0 {
		seconds = 0
	}
	if f.duration > 0 && seconds > f.duration {
		seconds = f.duration
	}
	f.position = seconds
}

func (f *FakeSurface) Position() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *FakeSurface) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *FakeSurface) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	f.volume = v
}

func (f *FakeSurface) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *FakeSurface) SetMuted(m bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = m
}

func (f *FakeSurface) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *FakeSurface) SetFullscreen(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullscreen = on
}

func (f *FakeSurface) Fullscreen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullscreen
}

func (f *FakeSurface) BufferedAhead() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffered
}

func (f *FakeSurface) CanPlayNativeHLS() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nativeHLS
}

func (f *FakeSurface) AssignDirect(manifestURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directTo = append(f.directTo, manifestURL)
	return nil
}

// SetNativeHLS toggles the native fallback capability.
func (f *FakeSurface) SetNativeHLS(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nativeHLS = ok
}

// SetBufferedAhead primes the buffer health reading.
func (f *FakeSurface) SetBufferedAhead(s float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffered = s
}

// Advance moves content time forward while playing; paused time is inert.
func (f *FakeSurface) Advance(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		return
	}
	f.position += seconds
	if f.duration > 0 && f.position > f.duration {
		f.position = f.duration
	}
}

// Playing reports decoder run state.
func (f *FakeSurface) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

// Seeks returns the seek history.
func (f *FakeSurface) Seeks() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]float64, len(f.seeks))
	copy(cp, f.seeks)
	return cp
}

// DirectAssignments returns URLs bound via the native fallback.
func (f *FakeSurface) DirectAssignments() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.directTo))
	copy(cp, f.directTo)
	return cp
}
