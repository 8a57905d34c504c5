package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"RR_DB_PATH", "RR_STARTING_CURRENCY", "RR_NOTIFICATION_TTL", "RR_TIMEZONE", "RR_LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStartingCurrency, c.StartingCurrency)
	assert.Equal(t, DefaultNotificationTTL, c.NotificationTTL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "", c.DBPath)
	assert.Equal(t, time.Local, c.Location())
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "db_path: /tmp/x.db\nstarting_currency: 30\nnotification_ttl: 2s\ntimezone: UTC\nlog_level: DEBUG\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", c.DBPath)
	assert.Equal(t, 30, c.StartingCurrency)
	assert.Equal(t, 2*time.Second, c.NotificationTTL)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "UTC", c.Location().String())

	t.Setenv("RR_STARTING_CURRENCY", "40")
	t.Setenv("RR_DB_PATH", "/tmp/env.db")
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, c.StartingCurrency)
	assert.Equal(t, "/tmp/env.db", c.DBPath)
}

func TestLoad_DefaultFileIsOptional(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "research-rank")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("starting_currency: 7\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.StartingCurrency)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("RR_TIMEZONE", "Nowhere/Special")
	_, err = Load("")
	require.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	c := Config{StartingCurrency: -1, LogLevel: "Warn"}
	c.ApplyDefaults()
	assert.Equal(t, DefaultStartingCurrency, c.StartingCurrency)
	assert.Equal(t, DefaultNotificationTTL, c.NotificationTTL)
	assert.Equal(t, "warn", c.LogLevel)
}
