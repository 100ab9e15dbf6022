// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// QualityTier is an ordered rendition ceiling. Keep the values stable:
// they appear in backend requests and metrics labels.
type QualityTier string

const (
	Quality480p  QualityTier = "480p"
	Quality720p  QualityTier = "720p"
	Quality1080p QualityTier = "1080p"
	Quality4K    QualityTier = "4k"
)

var qualityRank = map[QualityTier]int{
	Quality480p:  0,
	Quality720p:  1,
	Quality1080p: 2,
	Quality4K:    3,
}

// Rank returns the position of the tier in the total order, or -1 for
// unknown tiers so callers can fail closed.
func (q QualityTier) Rank() int {
	if r, ok := qualityRank[q]; ok {
		return r
	}
	return -1
}

// Known reports whether q is a member of the tier enum.
func (q QualityTier) Known() bool {
	return q.Rank() >= 0
}

// PlaybackSession is the backend-issued ticket for one playback attempt.
// Owned exclusively by the session manager.
type PlaybackSession struct {
	SessionID        string      `json:"sessionId"`
	ManifestURL      string      `json:"manifestUrl"`
	TitleID          string      `json:"titleId"`
	EpisodeID        string      `json:"episodeId,omitempty"`
	RequestedQuality QualityTier `json:"requestedQuality"`
}

// AdBreakType positions a break relative to content.
type AdBreakType string

const (
	AdPreRoll  AdBreakType = "pre_roll"
	AdMidRoll  AdBreakType = "mid_roll"
	AdPostRoll AdBreakType = "post_roll"
)

// AdBreak is one slot on the ad timeline. Shown is monotonic within a
// session: once true it never reverts, and each break fires at most once.
type AdBreak struct {
	ID                    string      `json:"id"`
	Type                  AdBreakType `json:"type"`
	TriggerTimeSeconds    float64     `json:"triggerTimeSeconds"`
	SkippableAfterSeconds float64     `json:"skippableAfterSeconds"`
	Shown                 bool        `json:"shown"`
}

// AdConfig carries rendering parameters for the currently active break.
// Ephemeral: it exists only while an ad is on screen.
type AdConfig struct {
	Provider        string  `json:"provider"`
	AdUnitID        string  `json:"adUnitId,omitempty"`
	DurationSeconds float64 `json:"durationSeconds"`
	CustomVideoURL  string  `json:"customVideoUrl,omitempty"`
	CustomClickURL  string  `json:"customClickUrl,omitempty"`
}

// MarkerType names a scene window used for skip affordances.
type MarkerType string

const (
	MarkerIntro   MarkerType = "INTRO"
	MarkerCredits MarkerType = "CREDITS"
)

// SceneMarker is a read-only [start, end) window in content time.
type SceneMarker struct {
	Type             MarkerType `json:"type"`
	StartTimeSeconds float64    `json:"startTimeSeconds"`
	EndTimeSeconds   float64    `json:"endTimeSeconds"`
}

// Contains reports half-open interval membership: a tick exactly at the
// end of the window is outside it.
func (m SceneMarker) Contains(t float64) bool {
	return t >= m.StartTimeSeconds && t < m.EndTimeSeconds
}

// Heartbeat is the periodic progress payload for resume and billing.
type Heartbeat struct {
	CurrentTimeSeconds  float64 `json:"currentTimeSeconds"`
	BufferHealthSeconds float64 `json:"bufferHealthSeconds"`
}

// NetworkStats is a sampled, purely observational QoE snapshot.
type NetworkStats struct {
	BandwidthMbps   float64 `json:"bandwidthMbps"`
	LatencyMs       float64 `json:"latencyMs"`
	BufferHealthPct float64 `json:"bufferHealthPct"`
	DroppedFrames   int     `json:"droppedFrames"`
}
