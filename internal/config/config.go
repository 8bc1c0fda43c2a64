// Package config loads the client tuning file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL string `yaml:"server_url"`
	AuthToken string `yaml:"auth_token"`

	InputRateHz int `yaml:"input_rate_hz"`
	FrameRateHz int `yaml:"frame_rate_hz"`

	Reconnect Reconnect `yaml:"reconnect"`
	Smoothing Smoothing `yaml:"smoothing"`
	Recorder  Recorder  `yaml:"recorder"`

	// SurfaceCacheMB bounds the rendered-terrain cache; 0 disables reuse.
	SurfaceCacheMB int `yaml:"surface_cache_mb"`
}

type Reconnect struct {
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxAttempts int `yaml:"max_attempts"`
}

// Smoothing factors per entity class, each in (0,1). Higher means snappier;
// projectiles move fastest and need the highest factor.
type Smoothing struct {
	Player     float64 `yaml:"player"`
	Zombie     float64 `yaml:"zombie"`
	Projectile float64 `yaml:"projectile"`
}

type Recorder struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default returns the tuning the client ships with.
func Default() Config {
	return Config{
		ServerURL:   "ws://localhost:8000/ws",
		InputRateHz: 20,
		FrameRateHz: 60,
		Reconnect: Reconnect{
			BaseDelayMs: 1000,
			MaxAttempts: 5,
		},
		Smoothing: Smoothing{
			Player:     0.18,
			Zombie:     0.22,
			Projectile: 0.5,
		},
		Recorder: Recorder{
			Dir: "./recordings",
		},
		SurfaceCacheMB: 64,
	}
}

// Load reads a yaml config, filling unset values from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.InputRateHz <= 0 {
		c.InputRateHz = d.InputRateHz
	}
	if c.FrameRateHz <= 0 {
		c.FrameRateHz = d.FrameRateHz
	}
	if c.Reconnect.BaseDelayMs <= 0 {
		c.Reconnect.BaseDelayMs = d.Reconnect.BaseDelayMs
	}
	if c.Reconnect.MaxAttempts <= 0 {
		c.Reconnect.MaxAttempts = d.Reconnect.MaxAttempts
	}
	if c.Smoothing.Player <= 0 || c.Smoothing.Player >= 1 {
		c.Smoothing.Player = d.Smoothing.Player
	}
	if c.Smoothing.Zombie <= 0 || c.Smoothing.Zombie >= 1 {
		c.Smoothing.Zombie = d.Smoothing.Zombie
	}
	if c.Smoothing.Projectile <= 0 || c.Smoothing.Projectile >= 1 {
		c.Smoothing.Projectile = d.Smoothing.Projectile
	}
	if c.Recorder.Dir == "" {
		c.Recorder.Dir = d.Recorder.Dir
	}
	return c
}

func (r Reconnect) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}
