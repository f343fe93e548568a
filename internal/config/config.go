package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

const envPrefix = "AKAVELOG_"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	API           APIConfig            `koanf:"api" validate:"required"`
	Poll          PollConfig           `koanf:"poll" validate:"required"`
	Form          FormConfig           `koanf:"form" validate:"required"`
	Stub          StubConfig           `koanf:"stub" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// APIConfig points the dashboard at the akavelog backend.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"` // 0 = no per-request timeout
}

// PollConfig drives the shared log/status ticker.
type PollConfig struct {
	Interval  time.Duration `koanf:"interval" validate:"required,gt=0"`
	MaxRecent int           `koanf:"max_recent" validate:"required,gt=0"`
}

// FormConfig selects the input type the dashboard provisions and the test log it sends.
type FormConfig struct {
	InputType      string `koanf:"input_type" validate:"required"`
	DefaultTitle   string `koanf:"default_title"`
	TestLogService string `koanf:"test_log_service" validate:"required"`
	TestLogSource  string `koanf:"test_log_source"`
}

// StubConfig configures cmd/akavelog-stub.
type StubConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	BatcherEnabled bool          `koanf:"batcher_enabled"`
	FlushInterval  time.Duration `koanf:"flush_interval" validate:"gte=0"`
	MaxBatchSize   int           `koanf:"max_batch_size" validate:"gte=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":           "development",
		"api.base_url":          "http://localhost:8080",
		"api.timeout":           time.Duration(0),
		"poll.interval":         2 * time.Second,
		"poll.max_recent":       200,
		"form.input_type":       "http",
		"form.default_title":    "my-http-input",
		"form.test_log_service": "demo-ui",
		"form.test_log_source":  "web",
		"stub.port":             "8080",
		"stub.batcher_enabled":  false,
		"stub.flush_interval":   30 * time.Second,
		"stub.max_batch_size":   1000,
	}
}

// envKey maps AKAVELOG_API__BASE_URL (or AKAVELOG_API.BASE_URL) to api.base_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// LoadConfig loads the configuration from defaults, an optional .env file and
// AKAVELOG_* environment variables, then validates it.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env") // optional; ignore if missing
	return load(env.Provider(envPrefix, ".", envKey))
}

func load(envProvider koanf.Provider) (mainConfig *Config, err error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")
	if err = k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err = k.Load(envProvider, nil); err != nil {
		logger.Error().Err(err).Msg("could not load env variables")
		return nil, fmt.Errorf("load env: %w", err)
	}

	mainConfig = &Config{}
	if err = k.Unmarshal("", mainConfig); err != nil {
		logger.Error().Err(err).Msg("could not unmarshal mainconfig")
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err = validate.Struct(mainConfig); err != nil {
		logger.Error().Err(err).Msg("could not validate the struct")
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// Observability is a pointer so an unset section falls back to defaults.
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}
	mainConfig.Observability.ServiceName = "akavelog-dash"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err = mainConfig.Observability.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid observability config")
		return nil, fmt.Errorf("observability config: %w", err)
	}
	return mainConfig, nil
}
