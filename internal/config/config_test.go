package config_test

import (
	"testing"
	"time"

	"apotek/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "apotek", cfg.AppName)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.TrackingCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.True(t, cfg.SeedDemoData)
}
