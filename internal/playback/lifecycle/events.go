// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/vodplayer/internal/playback/model"

// EventKind is a domain event in the playback session lifecycle.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvStartRequested
	EvManifestReady
	EvPlay
	EvPause
	EvEnded
	EvStopRequested
	EvFatalError
)

// Event carries optional domain metadata for a transition.
type Event struct {
	Kind   EventKind
	Reason model.ReasonCode
}
