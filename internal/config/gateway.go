package config

import "fmt"

// GatewayConfig holds the messaging gateway's env-style configuration:
// owner identity, guest pairing Redis, and bus wiring. The bot-API
// token/mode fields are carried here even though the transport itself
// is out of scope, so a single config surface stays authoritative.
type GatewayConfig struct {
	BotToken        string
	OwnerTelegramID int64
	GuestDefaultMinutes int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BusAddr  string
	BusType  string
	HTTPAddr string

	ReplyTimeoutSeconds int
}

// LoadGatewayConfig reads env-style configuration with the external
// interfaces table's defaults.
func LoadGatewayConfig() (*GatewayConfig, error) {
	c := &GatewayConfig{
		BotToken:            getEnvStr("TG_BOT_TOKEN", ""),
		OwnerTelegramID:     getEnvInt64("OWNER_TELEGRAM_ID", 0),
		GuestDefaultMinutes: getEnvInt("GUEST_DEFAULT_MINUTES", 30),
		RedisAddr:           getEnvStr("GATEWAY_REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnvStr("GATEWAY_REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("GATEWAY_REDIS_DB", 0),
		BusAddr:             getEnvStr("BUS_ADDR", "localhost:6379"),
		BusType:             getEnvStr("BUS_TYPE", "redis"),
		HTTPAddr:            getEnvStr("HTTP_ADDR", ":8082"),
		ReplyTimeoutSeconds: getEnvInt("REPLY_TIMEOUT_SECONDS", 10),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GatewayConfig) validate() error {
	if c.OwnerTelegramID == 0 {
		return fmt.Errorf("config error: OWNER_TELEGRAM_ID is required")
	}
	if c.BusAddr == "" {
		return fmt.Errorf("config error: BUS_ADDR is required")
	}
	return nil
}
