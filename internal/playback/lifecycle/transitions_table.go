// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/vodplayer/internal/playback/model"

// Transition is a single allowed edge in the lifecycle state machine.
type Transition struct {
	From   model.SessionState
	To     model.SessionState
	Event  EventKind
	Reason model.ReasonCode
}

var transitionsTable = []Transition{
	// Start path
	{From: model.SessionIdle, To: model.SessionInitializing, Event: EvStartRequested},
	{From: model.SessionInitializing, To: model.SessionReady, Event: EvManifestReady},

	// Playback toggles. Ready->Playing may be deferred by a pending
	// pre-roll; the manager gates EvPlay, the table only records legality.
	{From: model.SessionReady, To: model.SessionPlaying, Event: EvPlay},
	{From: model.SessionPlaying, To: model.SessionPaused, Event: EvPause},
	{From: model.SessionPaused, To: model.SessionPlaying, Event: EvPlay},

	// Natural end of content
	{From: model.SessionPlaying, To: model.SessionEnded, Event: EvEnded, Reason: model.REndOfContent},
	{From: model.SessionPaused, To: model.SessionEnded, Event: EvEnded, Reason: model.REndOfContent},

	// Client stop from any non-terminal state
	{From: model.SessionIdle, To: model.SessionEnded, Event: EvStopRequested, Reason: model.RClientStop},
	{From: model.SessionInitializing, To: model.SessionEnded, Event: EvStopRequested, Reason: model.RClientStop},
	{From: model.SessionReady, To: model.SessionEnded, Event: EvStopRequested, Reason: model.RClientStop},
	{From: model.SessionPlaying, To: model.SessionEnded, Event: EvStopRequested, Reason: model.RClientStop},
	{From: model.SessionPaused, To: model.SessionEnded, Event: EvStopRequested, Reason: model.RClientStop},

	// Fatal errors from any non-terminal state. Error is terminal.
	{From: model.SessionIdle, To: model.SessionError, Event: EvFatalError},
	{From: model.SessionInitializing, To: model.SessionError, Event: EvFatalError},
	{From: model.SessionReady, To: model.SessionError, Event: EvFatalError},
	{From: model.SessionPlaying, To: model.SessionError, Event: EvFatalError},
	{From: model.SessionPaused, To: model.SessionError, Event: EvFatalError},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from model.SessionState, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
