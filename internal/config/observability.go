package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
	// MetricsAddr, when set, serves prometheus /metrics on that address.
	MetricsAddr string `koanf:"metrics_addr"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
	// File receives logs while the terminal UI owns the screen. Empty discards them.
	File string `koanf:"file"`
}

type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "akavelog-dash",
		Environment: "development",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	if key := c.NewRelic.LicenseKey; key != "" && len(key) != 40 {
		return fmt.Errorf("new relic license key must be 40 characters")
	}
	return nil
}

// NewRelicEnabled reports whether a New Relic application should be started.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c != nil && c.NewRelic.LicenseKey != ""
}
