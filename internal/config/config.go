// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the daemon configuration from a YAML file with
// VODPLAYER_* environment overrides. Precedence: defaults < file < env.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

// Config is the validated runtime configuration.
type Config struct {
	Listen      string            `yaml:"listen"`
	Backend     BackendConfig     `yaml:"backend"`
	Heartbeat   HeartbeatConfig   `yaml:"heartbeat"`
	Entitlement EntitlementConfig `yaml:"entitlement"`
	Log         LogConfig         `yaml:"log"`
	RateLimit   RateLimitConfig   `yaml:"rateLimit"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type HeartbeatConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type EntitlementConfig struct {
	Premium    bool   `yaml:"premium"`
	ShowAds    bool   `yaml:"showAds"`
	MaxQuality string `yaml:"maxQuality"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
}

// Defaults returns the baseline configuration before file and env merge.
func Defaults() Config {
	return Config{
		Listen: ":8080",
		Backend: BackendConfig{
			Timeout: 10 * time.Second,
		},
		Heartbeat: HeartbeatConfig{
			Interval: 30 * time.Second,
		},
		Entitlement: EntitlementConfig{
			ShowAds:    true,
			MaxQuality: string(model.Quality720p),
		},
		Log: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
		},
	}
}

// Load reads path (optional), applies env overrides and validates. An
// empty path skips the file stage.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants the rest of the daemon relies on.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen must not be empty")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("config: backend.url is required")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("config: backend.url must be http(s), got %q", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend.timeout must be positive")
	}
	if c.Heartbeat.Interval < time.Second {
		return fmt.Errorf("config: heartbeat.interval must be at least 1s, got %s", c.Heartbeat.Interval)
	}
	if !model.QualityTier(c.Entitlement.MaxQuality).Known() {
		return fmt.Errorf("config: entitlement.maxQuality %q is not a known tier", c.Entitlement.MaxQuality)
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not valid", c.Log.Level)
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("config: rateLimit.requestsPerMinute must be positive")
	}
	return nil
}

// MaxQualityTier returns the validated entitlement ceiling.
func (c *Config) MaxQualityTier() model.QualityTier {
	return model.QualityTier(c.Entitlement.MaxQuality)
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("VODPLAYER_LISTEN"); ok {
		cfg.Listen = v
	}
	if v, ok := os.LookupEnv("VODPLAYER_BACKEND_URL"); ok {
		cfg.Backend.URL = v
	}
	if v, ok := os.LookupEnv("VODPLAYER_BACKEND_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: VODPLAYER_BACKEND_TIMEOUT: %w", err)
		}
		cfg.Backend.Timeout = d
	}
	if v, ok := os.LookupEnv("VODPLAYER_HEARTBEAT_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: VODPLAYER_HEARTBEAT_INTERVAL: %w", err)
		}
		cfg.Heartbeat.Interval = d
	}
	if v, ok := os.LookupEnv("VODPLAYER_ENTITLEMENT_PREMIUM"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: VODPLAYER_ENTITLEMENT_PREMIUM: %w", err)
		}
		cfg.Entitlement.Premium = b
	}
	if v, ok := os.LookupEnv("VODPLAYER_ENTITLEMENT_SHOW_ADS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: VODPLAYER_ENTITLEMENT_SHOW_ADS: %w", err)
		}
		cfg.Entitlement.ShowAds = b
	}
	if v, ok := os.LookupEnv("VODPLAYER_ENTITLEMENT_MAX_QUALITY"); ok {
		cfg.Entitlement.MaxQuality = v
	}
	if v, ok := os.LookupEnv("VODPLAYER_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv("VODPLAYER_RATE_LIMIT_RPM"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: VODPLAYER_RATE_LIMIT_RPM: %w", err)
		}
		cfg.RateLimit.RequestsPerMinute = n
	}
	return nil
}
