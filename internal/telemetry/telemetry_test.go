package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/akavelog-dash/internal/config"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.log")
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.File = path

	log, closer, err := NewLogger(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
	log.Debug().Msg("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello file"`)
	assert.Contains(t, string(data), `"service":"akavelog-dash"`)
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "chatty"
	_, _, err := NewLogger(cfg, false)
	assert.Error(t, err)
}

func TestNewRelic_DisabledWithoutKey(t *testing.T) {
	app, err := NewRelic(config.DefaultObservabilityConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, app)
	ShutdownNewRelic(app)
}
