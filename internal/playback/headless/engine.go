// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package headless

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

const manifestFetchTimeout = 10 * time.Second

// HTTPEngine validates a manifest by fetching it over HTTP. It stands in
// for an adaptive streaming engine: parse errors surface at Load, and
// the fatal channel stays available for the session's error watcher.
type HTTPEngine struct {
	client  *http.Client
	quality model.QualityTier

	fatal       chan error
	destroyOnce sync.Once
}

var _ ports.StreamEngine = (*HTTPEngine)(nil)

// NewEngineFactory returns a factory producing one HTTPEngine per
// attach. A nil client selects a default with a fetch timeout.
func NewEngineFactory(client *http.Client) ports.EngineFactory {
	if client == nil {
		client = &http.Client{Timeout: manifestFetchTimeout}
	}
	return func(quality model.QualityTier) ports.StreamEngine {
		return &HTTPEngine{
			client:  client,
			quality: quality,
			fatal:   make(chan error, 1),
		}
	}
}

func (e *HTTPEngine) SupportsAdaptive() bool { return true }

// Load fetches the manifest and checks it looks like an HLS playlist.
// The surface is not consulted: the virtual pipeline has no decoder to
// feed.
func (e *HTTPEngine) Load(ctx context.Context, manifestURL string, _ ports.MediaSurface) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return fmt.Errorf("manifest request: %w", err)
	}
	res, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("manifest fetch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("manifest fetch: unexpected status %d", res.StatusCode)
	}
	head := make([]byte, 16)
	n, err := io.ReadFull(res.Body, head)
	if err != nil && n == 0 {
		return fmt.Errorf("manifest read: %w", err)
	}
	if !strings.HasPrefix(string(head[:n]), "#EXTM3U") {
		return fmt.Errorf("manifest parse: not an HLS playlist")
	}
	logger := log.WithComponent("headless")
	logger.Debug().
		Str(log.FieldManifestURL, manifestURL).
		Str(log.FieldQuality, string(e.quality)).
		Msg("manifest validated")
	return nil
}

func (e *HTTPEngine) Fatal() <-chan error {
	return e.fatal
}

func (e *HTTPEngine) Destroy() {
	e.destroyOnce.Do(func() {
		close(e.fatal)
	})
}
