package telemetry

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/akave-ai/akavelog-dash/internal/config"
)

// NewRelic starts a New Relic application when a license key is configured.
// It returns nil, nil otherwise.
func NewRelic(cfg *config.ObservabilityConfig, log zerolog.Logger) (*newrelic.Application, error) {
	if !cfg.NewRelicEnabled() {
		return nil, nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
		func(c *newrelic.Config) {
			c.Labels = map[string]string{"env": cfg.Environment}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("new relic: %w", err)
	}
	log.Info().Str("app", cfg.ServiceName).Msg("new relic enabled")
	return app, nil
}

// ShutdownNewRelic flushes pending data. Safe on a nil app.
func ShutdownNewRelic(app *newrelic.Application) {
	if app != nil {
		app.Shutdown(5 * time.Second)
	}
}
