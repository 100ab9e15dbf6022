// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(yaml)), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
backend:
  url: "https://playback.example.com"
  timeout: 5s
heartbeat:
  interval: 15s
entitlement:
  premium: true
  showAds: false
  maxQuality: "4k"
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("backend.timeout = %s", cfg.Backend.Timeout)
	}
	if cfg.Heartbeat.Interval != 15*time.Second {
		t.Errorf("heartbeat.interval = %s", cfg.Heartbeat.Interval)
	}
	if !cfg.Entitlement.Premium || cfg.Entitlement.ShowAds {
		t.Errorf("entitlement = %+v", cfg.Entitlement)
	}
	if cfg.MaxQualityTier() != "4k" {
		t.Errorf("maxQuality = %q", cfg.Entitlement.MaxQuality)
	}
	// Untouched keys keep their defaults.
	if cfg.RateLimit.RequestsPerMinute != 120 {
		t.Errorf("rateLimit.requestsPerMinute = %d", cfg.RateLimit.RequestsPerMinute)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: "https://playback.example.com"
`)
	t.Setenv("VODPLAYER_LISTEN", ":7070")
	t.Setenv("VODPLAYER_HEARTBEAT_INTERVAL", "45s")
	t.Setenv("VODPLAYER_ENTITLEMENT_MAX_QUALITY", "1080p")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7070" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Heartbeat.Interval != 45*time.Second {
		t.Errorf("heartbeat.interval = %s", cfg.Heartbeat.Interval)
	}
	if cfg.Entitlement.MaxQuality != "1080p" {
		t.Errorf("maxQuality = %q", cfg.Entitlement.MaxQuality)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: "https://playback.example.com"
heartbeatInterval: 10s
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing backend url",
			mutate:  func(c *Config) { c.Backend.URL = "" },
			wantErr: "backend.url is required",
		},
		{
			name:    "non-http backend url",
			mutate:  func(c *Config) { c.Backend.URL = "ftp://host" },
			wantErr: "must be http(s)",
		},
		{
			name:    "sub-second heartbeat",
			mutate:  func(c *Config) { c.Heartbeat.Interval = 100 * time.Millisecond },
			wantErr: "heartbeat.interval",
		},
		{
			name:    "unknown quality tier",
			mutate:  func(c *Config) { c.Entitlement.MaxQuality = "8k" },
			wantErr: "not a known tier",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Backend.URL = "https://playback.example.com"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestEnvParseFailure(t *testing.T) {
	t.Setenv("VODPLAYER_BACKEND_URL", "https://playback.example.com")
	t.Setenv("VODPLAYER_BACKEND_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected duration parse error")
	}
}
