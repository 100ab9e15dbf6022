// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package headless provides the daemon-side media pipeline: a virtual
// surface that models content time, an HTTP manifest engine and a clock
// driver feeding the session manager. It is what lets the controller run
// without a real player process behind it.
package headless

import (
	"sync"

	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// VirtualSurface models a decoder's observable state without decoding
// anything. Content time advances only while playing, via the Driver.
type VirtualSurface struct {
	mu         sync.Mutex
	position   float64
	duration   float64
	playing    bool
	volume     float64
	muted      bool
	fullscreen bool
	manifest   string
}

var _ ports.MediaSurface = (*VirtualSurface)(nil)

// NewVirtualSurface builds a paused surface for content of the given
// length in seconds.
func NewVirtualSurface(durationSeconds float64) *VirtualSurface {
	return &VirtualSurface{duration: durationSeconds, volume: 1}
}

func (s *VirtualSurface) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
}

func (s *VirtualSurface) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

func (s *VirtualSurface) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}
	s.position = seconds
}

func (s *VirtualSurface) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *VirtualSurface) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *VirtualSurface) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.volume = v
}

func (s *VirtualSurface) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *VirtualSurface) SetMuted(m bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = m
}

func (s *VirtualSurface) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *VirtualSurface) SetFullscreen(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreen = on
}

func (s *VirtualSurface) Fullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullscreen
}

// BufferedAhead reports a synthetic buffer horizon: whatever remains of
// the content, capped at a typical segment window.
func (s *VirtualSurface) BufferedAhead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.duration - s.position
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 30 {
		return 30
	}
	return remaining
}

// CanPlayNativeHLS is always true for the virtual surface: it accepts
// any manifest URL directly.
func (s *VirtualSurface) CanPlayNativeHLS() bool { return true }

func (s *VirtualSurface) AssignDirect(manifestURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = manifestURL
	return nil
}

// Playing reports whether content time is advancing.
func (s *VirtualSurface) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// advance moves the clock while playing and reports whether the end of
// content was reached on this step.
func (s *VirtualSurface) advance(seconds float64) (pos float64, playing, ended bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return s.position, false, false
	}
	s.position += seconds
	if s.duration > 0 && s.position >= s.duration {
		s.position = s.duration
		s.playing = false
		return s.position, true, true
	}
	return s.position, true, false
}
