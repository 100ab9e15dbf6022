// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package control exposes the daemon's HTTP surface: session CRUD,
// playback controls and health/metrics endpoints.
package control

import (
	"context"
	"sync"

	"github.com/ManuGH/vodplayer/internal/playback/headless"
	"github.com/ManuGH/vodplayer/internal/playback/session"
)

// Entry pairs one session manager with its headless pipeline.
type Entry struct {
	ID      string
	Manager *session.Manager
	Surface *headless.VirtualSurface
	Driver  *headless.Driver
}

// Close stops the clock and ends the session.
func (e *Entry) Close(ctx context.Context) {
	_ = e.Manager.Stop(ctx)
	e.Driver.Stop()
}

// Registry is the set of live sessions, keyed by the daemon-local
// session handle (not the backend session ID).
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Put registers an entry under its handle.
func (r *Registry) Put(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID] = e
}

// Get looks up a live entry.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// Remove unregisters and returns the entry, if present.
func (r *Registry) Remove(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return e, ok
}

// List returns every live entry.
func (r *Registry) List() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// CloseAll tears down every live session, for daemon shutdown.
func (r *Registry) CloseAll(ctx context.Context) {
	for _, e := range r.List() {
		e.Close(ctx)
		r.Remove(e.ID)
	}
}
