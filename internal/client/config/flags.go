package config

import (
	"flag"
	"os"

	"github.com/mgallardo/freightdeck/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the reference-data API (default from Config)
//	-d string   local cache database path (default from Config)
//	-t string   bearer token for API calls
//	-l string   log level
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the reference-data API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local cache database")
	fs.StringVar(&cfg.AuthToken, "t", cfg.AuthToken, "bearer token for API calls")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
