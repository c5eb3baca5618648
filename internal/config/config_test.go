package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "garagelog.db", cfg.DatabasePath)
	assert.Equal(t, "legacy_store.json", cfg.LegacyStorePath)
	assert.Equal(t, "legacy_backup.json", cfg.BackupPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnvOverridesDefaults(t *testing.T) {
	t.Setenv("GARAGELOG_DATABASE", "/tmp/custom.db")
	t.Setenv("GARAGELOG_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "/tmp/custom.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "legacy_store.json", cfg.LegacyStorePath, "unset vars keep defaults")
}

func TestParseEnvIgnoresEmpty(t *testing.T) {
	t.Setenv("GARAGELOG_BACKUP", "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "legacy_backup.json", cfg.BackupPath)
}
