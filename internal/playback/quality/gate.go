// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package quality maps a requested rendition against the entitlement
// ceiling. Pure and synchronous: no network, no backend, no state.
package quality

import "github.com/ManuGH/vodplayer/internal/playback/model"

// Resolve clamps requested to the entitlement ceiling.
// This function is TOTAL: unknown inputs fail closed to the lowest
// defensible answer instead of erroring.
//   - unknown requested tier -> ceiling
//   - unknown ceiling        -> 480p
func Resolve(requested, ceiling model.QualityTier) model.QualityTier {
	if !ceiling.Known() {
		return model.Quality480p
	}
	if !requested.Known() {
		return ceiling
	}
	if requested.Rank() <= ceiling.Rank() {
		return requested
	}
	return ceiling
}

// Capped reports whether the viewer asked for more than the ceiling
// permits. Used for the downgrade metric and UI hinting.
func Capped(requested, ceiling model.QualityTier) bool {
	return Resolve(requested, ceiling) != requested
}
