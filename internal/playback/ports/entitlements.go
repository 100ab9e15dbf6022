// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "github.com/ManuGH/vodplayer/internal/playback/model"

// Entitlements is the read-only subscription view polled once at attach
// time. Mid-session upgrades take effect on the next session, never
// retroactively.
type Entitlements interface {
	IsPremium() bool
	ShouldShowAds() bool
	MaxQuality() model.QualityTier
}
