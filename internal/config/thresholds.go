package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/mbomani/soulscout/internal/throttle"
)

// ThresholdsProfile is the YAML-loaded tuning surface for the throttle
// engine's windows, grounded on the teacher's guards.go profile-file
// pattern (fixed struct loaded once at startup, not hot-reloaded).
type ThresholdsProfile struct {
	Throttle struct {
		CooldownActionableMin int `yaml:"cooldown_actionable_min"`
		CooldownHeadsUpMin    int `yaml:"cooldown_heads_up_min"`
		GlobalMaxPerHour      int `yaml:"global_max_per_hour"`
		DedupTTLSec           int `yaml:"dedup_ttl_sec"`
		ReentryGuardHours     int `yaml:"reentry_guard_hours"`
	} `yaml:"throttle"`
}

// ThrottleConfig builds the base throttle.Config from the individual
// env-sourced tuning fields, before any YAML profile override is applied.
func (c *AnalyticsConfig) ThrottleConfig() throttle.Config {
	cfg := throttle.DefaultConfig()
	cfg.CooldownActionable = time.Duration(c.CooldownActionableHours * float64(time.Hour))
	cfg.CooldownHeadsUp = time.Duration(c.CooldownHeadsUpHours * float64(time.Hour))
	cfg.GlobalMaxPerHour = c.GlobalActionableMaxPerHr
	cfg.DedupTTL = time.Duration(c.DedupTTLSeconds) * time.Second
	cfg.ReentryGuard = time.Duration(c.ReentryGuardHours * float64(time.Hour))
	return cfg
}

// LoadThresholdsProfile reads an optional YAML profile from path and
// overlays it onto base; a missing path (empty string, or a file that
// doesn't exist) returns base unchanged — a threshold profile is an
// optional tuning override on top of env config, not a required
// startup dependency.
func LoadThresholdsProfile(path string, base throttle.Config) (throttle.Config, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return throttle.Config{}, fmt.Errorf("read thresholds profile: %w", err)
	}

	var profile ThresholdsProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return throttle.Config{}, fmt.Errorf("parse thresholds profile: %w", err)
	}

	cfg := base
	t := profile.Throttle
	if t.CooldownActionableMin > 0 {
		cfg.CooldownActionable = time.Duration(t.CooldownActionableMin) * time.Minute
	}
	if t.CooldownHeadsUpMin > 0 {
		cfg.CooldownHeadsUp = time.Duration(t.CooldownHeadsUpMin) * time.Minute
	}
	if t.GlobalMaxPerHour > 0 {
		cfg.GlobalMaxPerHour = t.GlobalMaxPerHour
	}
	if t.DedupTTLSec > 0 {
		cfg.DedupTTL = time.Duration(t.DedupTTLSec) * time.Second
	}
	if t.ReentryGuardHours > 0 {
		cfg.ReentryGuard = time.Duration(t.ReentryGuardHours) * time.Hour
	}
	return cfg, nil
}
