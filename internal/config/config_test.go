package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("GENERATION_CRON", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "0 0 6 * * 4", cfg.GenerationCron)
	assert.Equal(t, "0 0 2 * * 1", cfg.ArchivalCron)
	assert.Equal(t, 8, cfg.NotifyConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.GeneratorTimeout)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_BASE_URL", "https://shifts.example.com/")
	t.Setenv("NOTIFY_CONCURRENCY", "3")
	t.Setenv("SCHEDULER_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "https://shifts.example.com", cfg.AppBaseURL)
	assert.Equal(t, 3, cfg.NotifyConcurrency)
	assert.True(t, cfg.SchedulerEnabled)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseDSN: "dsn", NotifyConcurrency: 1, Timezone: "Mars/Olympus"}
	assert.Error(t, cfg.Validate())

	cfg.Timezone = "Europe/Madrid"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "Europe/Madrid", cfg.Location().String())

	cfg.NotifyConcurrency = 0
	assert.Error(t, cfg.Validate())
}
