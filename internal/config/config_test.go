package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pet-adoption-hub", cfg.App.Name)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.Blob.Enabled)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 30, cfg.Retention.RejectedMaxAgeDays)
	assert.Equal(t, time.Hour, cfg.Retention.Interval)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("http:\n  port: \"9090\"\nlog:\n  level: debug\nretention:\n  rejected_max_age_days: 7\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("PETHUB_LOG_LEVEL", "warn")
	t.Setenv("PETHUB_AUTH_ADMIN_USER_IDS", "admin-1,admin-2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Retention.RejectedMaxAgeDays)
	assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.Auth.AdminUserIDs)
}

func TestLoad_PortEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr())
}

func TestLoad_RejectsNonPositiveRetention(t *testing.T) {
	t.Setenv("PETHUB_RETENTION_REJECTED_MAX_AGE_DAYS", "0")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_RejectsZeroIntervalOnlyWhenRetentionEnabled(t *testing.T) {
	t.Setenv("PETHUB_RETENTION_INTERVAL", "0s")

	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("PETHUB_RETENTION_ENABLED", "false")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Retention.Enabled)
}
