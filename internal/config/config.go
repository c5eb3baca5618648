// Package config loads runtime settings for garagelog: defaults first, then
// a .env file, then environment variables, then command-line flags, later
// sources winning.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// DatabasePath is the embedded engine's database file.
	DatabasePath string
	// LegacyStorePath is the legacy key-value snapshot file read by the
	// importer.
	LegacyStorePath string
	// BackupPath is where the importer writes its pre-migration backup.
	BackupPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

func (c *Config) LoadDefaults() {
	c.DatabasePath = "garagelog.db"
	c.LegacyStorePath = "legacy_store.json"
	c.BackupPath = "legacy_backup.json"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from all sources.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	_ = godotenv.Load()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(cfg *Config) {
	setIfPresent := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setIfPresent(&cfg.DatabasePath, "GARAGELOG_DATABASE")
	setIfPresent(&cfg.LegacyStorePath, "GARAGELOG_LEGACY_STORE")
	setIfPresent(&cfg.BackupPath, "GARAGELOG_BACKUP")
	setIfPresent(&cfg.LogLevel, "GARAGELOG_LOG_LEVEL")
}
