// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package backend is the REST client for the playback service. It is the
// only component that talks to the service; everything above it works in
// terms of the ports.Backend interface.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an upstream error payload we keep for
// logging.
const maxErrorBody = 512

type Client struct {
	base string
	http *http.Client
}

// New builds a client for the playback service at base. A zero timeout
// selects the default.
func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

var _ ports.Backend = (*Client)(nil)

type startSessionBody struct {
	TitleID   string `json:"titleId"`
	EpisodeID string `json:"episodeId,omitempty"`
	Quality   string `json:"quality"`
	Protocol  string `json:"protocol"`
}

type startSessionReply struct {
	SessionID   string `json:"sessionId"`
	ManifestURL string `json:"manifestUrl"`
}

// StartSession creates one playback session. The returned manifest URL
// is short-lived and tied to the session.
func (c *Client) StartSession(ctx context.Context, req ports.StartSessionRequest) (ports.StartSessionResponse, error) {
	body := startSessionBody{
		TitleID:   req.TitleID,
		EpisodeID: req.EpisodeID,
		Quality:   string(req.Quality),
		Protocol:  req.Protocol,
	}
	var reply startSessionReply
	if err := c.post(ctx, "start_session", "/api/v1/playback/sessions", body, &reply); err != nil {
		return ports.StartSessionResponse{}, err
	}
	if reply.SessionID == "" || reply.ManifestURL == "" {
		return ports.StartSessionResponse{}, &APIError{
			Sentinel:  ErrBadResponse,
			Operation: "start_session",
			Body:      "missing sessionId or manifestUrl",
		}
	}
	return ports.StartSessionResponse{
		SessionID:   reply.SessionID,
		ManifestURL: reply.ManifestURL,
	}, nil
}

// Heartbeat reports playback progress for resume and billing.
func (c *Client) Heartbeat(ctx context.Context, sessionID string, hb model.Heartbeat) error {
	path := "/api/v1/playback/sessions/" + url.PathEscape(sessionID) + "/heartbeat"
	return c.post(ctx, "heartbeat", path, hb, nil)
}

type endSessionBody struct {
	LastPositionSeconds float64 `json:"lastPositionSeconds"`
}

// EndSession closes the session with the final watch position.
func (c *Client) EndSession(ctx context.Context, sessionID string, lastPositionSeconds float64) error {
	path := "/api/v1/playback/sessions/" + url.PathEscape(sessionID) + "/end"
	return c.post(ctx, "end_session", path, endSessionBody{LastPositionSeconds: lastPositionSeconds}, nil)
}

type markersReply struct {
	Markers []model.SceneMarker `json:"markers"`
}

// Markers fetches the scene windows for an episode. A 404 means no
// markers exist and is returned as an empty list, not an error.
func (c *Client) Markers(ctx context.Context, episodeID string) ([]model.SceneMarker, error) {
	path := "/api/v1/episodes/" + url.PathEscape(episodeID) + "/markers"
	var reply markersReply
	if err := c.get(ctx, "markers", path, &reply); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reply.Markers, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Sentinel: ErrUnavailable, Operation: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return &APIError{Sentinel: ErrUnavailable, Operation: op, Err: err}
	}
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	req.Header.Set("X-Request-ID", uuid.NewString())
	res, err := c.http.Do(req)
	if err != nil {
		sentinel := ErrUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			sentinel = ErrRequestTimeout
		}
		return &APIError{Sentinel: sentinel, Operation: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{
			Sentinel:  classifyStatus(res.StatusCode),
			Operation: op,
			Status:    res.StatusCode,
			Body:      readErrorBody(res.Body),
		}
	}
	if out == nil {
		io.Copy(io.Discard, res.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Status: res.StatusCode, Err: err}
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return ErrForbidden
	case status >= 500:
		return ErrUpstreamError
	default:
		return fmt.Errorf("%w: unexpected status", ErrBadResponse)
	}
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
