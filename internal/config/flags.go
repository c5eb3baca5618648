package config

import (
	"flag"
	"os"

	"github.com/dkalnina/garagelog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   database file path
//	-l string   legacy key-value store path
//	-b string   migration backup path
//	-v string   log level (debug, info, warn, error)
//
// os.Args is filtered to the flags handled here so other components can own
// their own flags without interference.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-b", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database file path")
	fs.StringVar(&cfg.LegacyStorePath, "l", cfg.LegacyStorePath, "legacy key-value store path")
	fs.StringVar(&cfg.BackupPath, "b", cfg.BackupPath, "migration backup path")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
