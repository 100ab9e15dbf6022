// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"fmt"
	"time"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// Dispatch resolves and applies a transition on the record.
// Terminal states absorb further events: dispatching on a terminal record
// returns ErrIllegalTransition so callers cannot resurrect a session.
func Dispatch(rec *model.SessionRecord, ev Event, now time.Time) (Transition, error) {
	if rec.State.IsTerminal() {
		return Transition{}, fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, rec.State)
	}
	tr, ok := TransitionFor(rec.State, ev.Kind)
	if !ok {
		return Transition{}, fmt.Errorf("%w: no edge %s + event %d", ErrIllegalTransition, rec.State, ev.Kind)
	}
	if ev.Reason != "" {
		tr.Reason = ev.Reason
	}
	ApplyTransition(rec, tr, now)
	return tr, nil
}

// ApplyTransition mutates the session record according to the transition.
func ApplyTransition(rec *model.SessionRecord, tr Transition, now time.Time) {
	rec.State = tr.To
	if tr.Reason != "" {
		rec.Reason = tr.Reason
	}
	rec.UpdatedAtUnix = now.Unix()
}
