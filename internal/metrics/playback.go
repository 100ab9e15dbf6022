// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics exposes Prometheus collectors for the playback
// controller. Labels are normalized through strict allowlists to keep
// cardinality low and dashboards stable.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"

	adOutcomeCompleted = "completed"
	adOutcomeSkipped   = "skipped"
	adOutcomeFailed    = "failed"
	adOutcomeDropped   = "dropped"
)

var (
	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vodplayer_session_transitions_total",
		Help: "Playback session state machine transitions",
	}, []string{"from", "to"})

	sessionStartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vodplayer_session_start_total",
		Help: "Playback session start attempts by outcome",
	}, []string{"outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vodplayer_active_sessions",
		Help: "Sessions currently open (non-terminal)",
	})

	heartbeatTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vodplayer_heartbeat_total",
		Help: "Telemetry heartbeats by outcome (ok/failed/skipped)",
	}, []string{"outcome"})

	adBreakTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vodplayer_ad_break_total",
		Help: "Ad breaks by type and outcome",
	}, []string{"type", "outcome"})

	playbackErrorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vodplayer_playback_error_total",
		Help: "Session-fatal and decode-fatal playback errors by reason code",
	}, []string{"reason"})

	qualityCappedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vodplayer_quality_capped_total",
		Help: "Requests clamped to the entitlement ceiling",
	})
)

// RecordTransition counts one state machine edge.
func RecordTransition(from, to string) {
	sessionTransitions.WithLabelValues(from, to).Inc()
}

// RecordSessionStart counts a start attempt with a normalized outcome.
func RecordSessionStart(outcome string) {
	sessionStartTotal.WithLabelValues(normalizeOutcome(outcome)).Inc()
}

// IncActiveSessions / DecActiveSessions track the open-session gauge.
func IncActiveSessions() { activeSessions.Inc() }
func DecActiveSessions() { activeSessions.Dec() }

// RecordHeartbeat counts one heartbeat tick outcome.
func RecordHeartbeat(outcome string) {
	heartbeatTotal.WithLabelValues(normalizeOutcome(outcome)).Inc()
}

// RecordAdBreak counts one break resolution.
func RecordAdBreak(breakType, outcome string) {
	adBreakTotal.WithLabelValues(normalizeAdType(breakType), normalizeAdOutcome(outcome)).Inc()
}

// RecordPlaybackError counts a classified fatal playback error.
func RecordPlaybackError(reason string) {
	playbackErrorTotal.WithLabelValues(normalizeReason(reason)).Inc()
}

// RecordQualityCapped counts a clamped quality request.
func RecordQualityCapped() { qualityCappedTotal.Inc() }

func normalizeOutcome(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case outcomeOK, outcomeFailed, outcomeSkipped, "cancel", "busy":
		return strings.ToLower(strings.TrimSpace(outcome))
	default:
		return "unknown"
	}
}

func normalizeAdType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "pre_roll", "mid_roll", "post_roll":
		return strings.ToLower(strings.TrimSpace(t))
	default:
		return "unknown"
	}
}

func normalizeAdOutcome(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case adOutcomeCompleted, adOutcomeSkipped, adOutcomeFailed, adOutcomeDropped:
		return strings.ToLower(strings.TrimSpace(outcome))
	default:
		return "unknown"
	}
}

func normalizeReason(reason string) string {
	clean := strings.ToUpper(strings.TrimSpace(reason))
	switch clean {
	case "R_SESSION_CREATE_FAILED",
		"R_MANIFEST_LOAD_FAILED",
		"R_UNSUPPORTED_FORMAT",
		"R_DECODE_FATAL",
		"R_BAD_REQUEST":
		return clean
	default:
		return "R_UNKNOWN"
	}
}
