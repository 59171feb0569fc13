package config

import "fmt"

// IngestorConfig holds the ingestor service's env-style configuration:
// bar synthesis interval and bus wiring. Per-venue RPC endpoints are
// out of scope (external collaborators the spec excludes).
type IngestorConfig struct {
	Bar5mIntervalMs  int64
	Bar15mIntervalMs int64

	BusAddr  string
	BusType  string
	HTTPAddr string
}

// LoadIngestorConfig reads env-style configuration with the external
// interfaces table's defaults.
func LoadIngestorConfig() (*IngestorConfig, error) {
	c := &IngestorConfig{
		Bar5mIntervalMs:  int64(getEnvInt("BAR_5M_INTERVAL_MS", 300_000)),
		Bar15mIntervalMs: int64(getEnvInt("BAR_15M_INTERVAL_MS", 900_000)),
		BusAddr:          getEnvStr("BUS_ADDR", "localhost:6379"),
		BusType:          getEnvStr("BUS_TYPE", "redis"),
		HTTPAddr:         getEnvStr("HTTP_ADDR", ":8084"),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *IngestorConfig) validate() error {
	if c.Bar5mIntervalMs <= 0 || c.Bar15mIntervalMs <= 0 {
		return fmt.Errorf("config error: bar intervals must be positive")
	}
	if c.BusAddr == "" {
		return fmt.Errorf("config error: BUS_ADDR is required")
	}
	return nil
}
