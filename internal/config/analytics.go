package config

import (
	"fmt"
	"os"
	"strconv"
)

// AnalyticsConfig holds the env-style configuration for the analytics
// service's decision pipeline: band thresholds, regime adjustments, and
// throttle-engine parameters.
type AnalyticsConfig struct {
	ActionableBaseThreshold   float64
	RiskOnAdj                 float64
	RiskOffAdj                float64
	GlobalActionableMaxPerHr  int
	CooldownActionableHours   float64
	CooldownHeadsUpHours      float64
	ReentryGuardHours         float64
	DedupTTLSeconds           int
	WatchWindowMin            int

	BusAddr    string
	BusType    string
	HTTPAddr   string
	BlockMs    int

	ThresholdsProfilePath string
}

// LoadAnalyticsConfig reads env-style configuration, applying the defaults
// from the external interfaces table, and fails fast if validation does
// not hold.
func LoadAnalyticsConfig() (*AnalyticsConfig, error) {
	c := &AnalyticsConfig{
		ActionableBaseThreshold:  getEnvFloat("ACTIONABLE_BASE_THRESHOLD", 70),
		RiskOnAdj:                getEnvFloat("RISK_ON_ADJ", -10),
		RiskOffAdj:               getEnvFloat("RISK_OFF_ADJ", 10),
		GlobalActionableMaxPerHr: getEnvInt("GLOBAL_ACTIONABLE_MAX_PER_HOUR", 5),
		CooldownActionableHours:  getEnvFloat("COOLDOWN_ACTIONABLE_HOURS", 6),
		CooldownHeadsUpHours:     getEnvFloat("COOLDOWN_HEADSUP_HOURS", 1),
		ReentryGuardHours:        getEnvFloat("REENTRY_GUARD_HOURS", 12),
		DedupTTLSeconds:          getEnvInt("DEDUP_TTL_SECONDS", 21600),
		WatchWindowMin:           getEnvInt("WATCH_WINDOW_MIN", 120),
		BusAddr:                  getEnvStr("BUS_ADDR", "localhost:6379"),
		BusType:                  getEnvStr("BUS_TYPE", "redis"),
		HTTPAddr:                 getEnvStr("HTTP_ADDR", ":8080"),
		BlockMs:                  getEnvInt("STREAM_BLOCK_MS", 1000),
		ThresholdsProfilePath:    getEnvStr("THRESHOLDS_PROFILE_PATH", ""),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *AnalyticsConfig) validate() error {
	if c.GlobalActionableMaxPerHr <= 0 {
		return fmt.Errorf("config error: GLOBAL_ACTIONABLE_MAX_PER_HOUR must be positive")
	}
	if c.DedupTTLSeconds <= 0 {
		return fmt.Errorf("config error: DEDUP_TTL_SECONDS must be positive")
	}
	if c.BusAddr == "" {
		return fmt.Errorf("config error: BUS_ADDR is required")
	}
	return nil
}

func getEnvStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
