package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/config"
)

func TestLoadAndValidateConfig_Overrides(t *testing.T) {
	cfg, err := LoadAndValidateConfig("", map[string]string{
		"data_backend": "memory",
		"log_level":    "debug",
		"port":         "",
	})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataBackend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadAndValidateConfig_Invalid(t *testing.T) {
	_, err := LoadAndValidateConfig("", map[string]string{"data_backend": "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, "worker")
	assert.Equal(t, "worker", logger.Component())
	assert.False(t, logger.Enabled(t.Context(), -4))
}
