// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package markers answers "is the playhead inside a named scene window"
// for skip-intro / skip-credits affordances.
package markers

import (
	"sort"

	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// Navigator holds the read-only marker set for one episode.
type Navigator struct {
	markers []model.SceneMarker
}

// New copies and orders the marker set by window start.
func New(ms []model.SceneMarker) *Navigator {
	cp := make([]model.SceneMarker, len(ms))
	copy(cp, ms)
	sort.Slice(cp, func(i, j int) bool {
		return cp[i].StartTimeSeconds < cp[j].StartTimeSeconds
	})
	return &Navigator{markers: cp}
}

// ActiveMarker returns the marker whose [start, end) window contains t,
// or nil. A tick exactly at the window end is outside it.
func (n *Navigator) ActiveMarker(t float64) *model.SceneMarker {
	for i := range n.markers {
		if n.markers[i].Contains(t) {
			m := n.markers[i]
			return &m
		}
	}
	return nil
}

// Skip seeks the surface to the end of the marker window. User-invoked
// and idempotent: a nil marker is a no-op, not an error.
func (n *Navigator) Skip(surface ports.MediaSurface, m *model.SceneMarker) bool {
	if m == nil || surface == nil {
		return false
	}
	surface.Seek(m.EndTimeSeconds)
	return true
}
