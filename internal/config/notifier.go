package config

import "fmt"

// NotifierConfig holds the notifier service's env-style configuration:
// dedup/mute Redis connection, delivery rate cap, and bus wiring.
type NotifierConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DedupTTLSeconds          int
	GlobalMaxPerHour         int
	DefaultMuteMinutes       int
	OwnerTelegramID          int64

	BusAddr  string
	BusType  string
	HTTPAddr string
}

// LoadNotifierConfig reads env-style configuration with the external
// interfaces table's defaults.
func LoadNotifierConfig() (*NotifierConfig, error) {
	c := &NotifierConfig{
		RedisAddr:          getEnvStr("NOTIFIER_REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnvStr("NOTIFIER_REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("NOTIFIER_REDIS_DB", 0),
		DedupTTLSeconds:    getEnvInt("DEDUP_TTL_SECONDS", 21600),
		GlobalMaxPerHour:   getEnvInt("GLOBAL_ACTIONABLE_MAX_PER_HOUR", 5),
		DefaultMuteMinutes: getEnvInt("DEFAULT_MUTE_MINUTES", 30),
		OwnerTelegramID:    getEnvInt64("OWNER_TELEGRAM_ID", 0),
		BusAddr:            getEnvStr("BUS_ADDR", "localhost:6379"),
		BusType:            getEnvStr("BUS_TYPE", "redis"),
		HTTPAddr:           getEnvStr("HTTP_ADDR", ":8081"),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *NotifierConfig) validate() error {
	if c.OwnerTelegramID == 0 {
		return fmt.Errorf("config error: OWNER_TELEGRAM_ID is required")
	}
	if c.BusAddr == "" {
		return fmt.Errorf("config error: BUS_ADDR is required")
	}
	return nil
}
