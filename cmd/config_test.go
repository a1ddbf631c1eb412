package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"logistics/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults_without_env_file", func(t *testing.T) {
		// When
		cfg, err := cmd.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

		// Then
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "https://router.project-osrm.org", cfg.RoutingBaseURL)
		assert.Equal(t, 3*time.Second, cfg.SimulationTickInterval)
		assert.Equal(t, 2*time.Second, cfg.SimulationStoreTimeout)
		assert.Equal(t, time.Hour, cfg.SimulationStateTTL)
		assert.Equal(t, 5*time.Minute, cfg.ApprovalWindow)
		assert.Equal(t, "@every 30s", cfg.RecoverySchedule)
		assert.Empty(t, cfg.MQTTBrokerURL)
		assert.Equal(t, "tenants/+/drivers/+/location", cfg.MQTTLocationTopic)
		assert.Empty(t, cfg.WSAllowedOrigins)
	})

	t.Run("environment_overrides_defaults", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("APPROVAL_WINDOW", "90s")
		t.Setenv("REDIS_DB", "3")
		t.Setenv("WS_ALLOWED_ORIGINS", "https://ops.example.com, ,https://app.example.com")

		cfg, err := cmd.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.HTTPPort)
		assert.Equal(t, 90*time.Second, cfg.ApprovalWindow)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, []string{"https://ops.example.com", "https://app.example.com"}, cfg.WSAllowedOrigins)
	})

	t.Run("env_file_is_loaded", func(t *testing.T) {
		// Given
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("DB_NAME=fleet\nSIMULATION_TICK_INTERVAL=500ms\n"), 0o600))
		t.Cleanup(func() {
			_ = os.Unsetenv("DB_NAME")
			_ = os.Unsetenv("SIMULATION_TICK_INTERVAL")
		})

		// When
		cfg, err := cmd.LoadConfig(envFile)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "fleet", cfg.DBName)
		assert.Equal(t, 500*time.Millisecond, cfg.SimulationTickInterval)
		assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=fleet sslmode=disable", cfg.DSN())
	})
}
