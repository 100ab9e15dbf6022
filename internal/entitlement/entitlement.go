// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package entitlement provides subscription snapshots for the playback
// controller. The controller polls once at attach time; refreshing is the
// host application's concern.
package entitlement

import "github.com/ManuGH/vodplayer/internal/playback/model"

// Static is a fixed entitlement snapshot, typically built from config.
type Static struct {
	premium bool
	showAds bool
	ceiling model.QualityTier
}

// NewStatic normalizes the ceiling: unknown tiers fail closed to 480p.
func NewStatic(premium, showAds bool, ceiling model.QualityTier) *Static {
	if !ceiling.Known() {
		ceiling = model.Quality480p
	}
	return &Static{premium: premium, showAds: showAds, ceiling: ceiling}
}

func (s *Static) IsPremium() bool               { return s.premium }
func (s *Static) ShouldShowAds() bool           { return s.showAds }
func (s *Static) MaxQuality() model.QualityTier { return s.ceiling }
