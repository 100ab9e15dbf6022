// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

type adBreakItem struct {
	ID                    string         `json:"id"`
	Type                  string         `json:"type"`
	TriggerTimeSeconds    float64        `json:"triggerTimeSeconds"`
	SkippableAfterSeconds float64        `json:"skippableAfterSeconds"`
	Ad                    model.AdConfig `json:"ad"`
}

type adScheduleReply struct {
	Breaks []adBreakItem `json:"adBreaks"`
}

// AdSchedule serves the ad timeline for one title from the playback
// service. It caches the per-break creatives from the schedule fetch so
// Config never needs a second round trip.
type AdSchedule struct {
	client  *Client
	titleID string

	mu      sync.Mutex
	configs map[string]model.AdConfig
}

var _ ports.AdProvider = (*AdSchedule)(nil)

// AdSchedule binds the client to one title's timeline.
func (c *Client) AdSchedule(titleID string) *AdSchedule {
	return &AdSchedule{
		client:  c,
		titleID: titleID,
		configs: make(map[string]model.AdConfig),
	}
}

// Schedule fetches the timeline. A 404 means the title carries no ads
// and yields an empty schedule, not an error.
func (s *AdSchedule) Schedule(ctx context.Context) ([]model.AdBreak, error) {
	path := "/api/v1/titles/" + url.PathEscape(s.titleID) + "/ad-breaks"
	var reply adScheduleReply
	if err := s.client.get(ctx, "ad_schedule", path, &reply); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	breaks := make([]model.AdBreak, 0, len(reply.Breaks))
	for _, item := range reply.Breaks {
		s.configs[item.ID] = item.Ad
		breaks = append(breaks, model.AdBreak{
			ID:                    item.ID,
			Type:                  model.AdBreakType(item.Type),
			TriggerTimeSeconds:    item.TriggerTimeSeconds,
			SkippableAfterSeconds: item.SkippableAfterSeconds,
		})
	}
	return breaks, nil
}

// Config returns the creative cached for the break.
func (s *AdSchedule) Config(b model.AdBreak) model.AdConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configs[b.ID]
}
