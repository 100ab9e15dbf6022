// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vodplayer/internal/entitlement"
	"github.com/ManuGH/vodplayer/internal/playback/model"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
	"github.com/ManuGH/vodplayer/internal/playback/testkit"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *testkit.StepperBackend) {
	t.Helper()
	backend := testkit.NewImmediateBackend()
	srv := &Server{
		Backend:      backend,
		Entitlements: entitlement.NewStatic(true, false, model.Quality4K),
		AdProviderFor: func(string) ports.AdProvider {
			return &testkit.FakeAdProvider{}
		},
		Engines:   testkit.NewEngineRecorder().Factory(),
		TickEvery: 10 * time.Millisecond,
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ts.Close()
	})
	return srv, ts, backend
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return res
}

func createSession(t *testing.T, ts *httptest.Server) sessionReply {
	t.Helper()
	res := postJSON(t, ts.URL+"/api/v1/sessions", createSessionRequest{
		TitleID:         "title-1",
		EpisodeID:       "ep-1",
		Quality:         "1080p",
		DurationSeconds: 600,
	})
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var reply sessionReply
	require.NoError(t, json.NewDecoder(res.Body).Decode(&reply))
	return reply
}

func TestCreateAndGetSession(t *testing.T) {
	_, ts, backend := newTestServer(t)

	reply := createSession(t, ts)
	require.NotEmpty(t, reply.ID)
	assert.Equal(t, model.SessionPlaying, reply.State)
	assert.Equal(t, model.Quality1080p, reply.EffectiveQuality)
	assert.Equal(t, int32(1), backend.StartCount())

	res, err := http.Get(ts.URL + "/api/v1/sessions/" + reply.ID)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got sessionReply
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, reply.ID, got.ID)
	assert.Equal(t, "sess-1", got.SessionID)
}

func TestCreateSessionValidation(t *testing.T) {
	_, ts, backend := newTestServer(t)

	res := postJSON(t, ts.URL+"/api/v1/sessions", createSessionRequest{Quality: "720p"})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = postJSON(t, ts.URL+"/api/v1/sessions", createSessionRequest{TitleID: "t", Quality: "8k"})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	assert.Equal(t, int32(0), backend.StartCount())
}

func TestControlsToggleAndSeek(t *testing.T) {
	_, ts, _ := newTestServer(t)
	reply := createSession(t, ts)
	url := ts.URL + "/api/v1/sessions/" + reply.ID + "/controls"

	res := postJSON(t, url, controlRequest{Action: "toggle_play"})
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got sessionReply
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, model.SessionPaused, got.State)

	res = postJSON(t, url, controlRequest{Action: "seek", Seconds: 120})
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = postJSON(t, url, controlRequest{Action: "toggle_play"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	res.Body.Close()
	assert.Equal(t, model.SessionPlaying, got.State)
	assert.GreaterOrEqual(t, got.PositionSeconds, float64(120))
}

func TestControlsUnknownAction(t *testing.T) {
	_, ts, _ := newTestServer(t)
	reply := createSession(t, ts)

	res := postJSON(t, ts.URL+"/api/v1/sessions/"+reply.ID+"/controls", controlRequest{Action: "explode"})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteSessionEndsPlayback(t *testing.T) {
	_, ts, backend := newTestServer(t)
	reply := createSession(t, ts)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/sessions/"+reply.ID, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, int32(1), backend.EndCount())

	res, err = http.Get(ts.URL + "/api/v1/sessions/" + reply.ID)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHealthAndRequestID(t *testing.T) {
	_, ts, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	backend := testkit.NewImmediateBackend()
	srv := &Server{
		Backend:      backend,
		Entitlements: entitlement.NewStatic(true, false, model.Quality4K),
		AdProviderFor: func(string) ports.AdProvider {
			return &testkit.FakeAdProvider{}
		},
		Engines:      testkit.NewEngineRecorder().Factory(),
		RateLimitRPM: 3,
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	var last int
	for i := 0; i < 5; i++ {
		res, err := http.Get(fmt.Sprintf("%s/healthz", ts.URL))
		require.NoError(t, err)
		res.Body.Close()
		last = res.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
