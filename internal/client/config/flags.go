package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/pdfier/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   backend base URL
//	-e string   environment (development|production)
//	-d string   path to the local SQLite database
//	-l int      guest daily operation limit
//	-v          verbose (debug) logging
//
// Only these flags are taken from os.Args, using flagx.FilterArgs, so the
// config loader does not trip over flags owned by other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-e", "-d", "-l", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment (development|production)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.IntVar(&cfg.GuestDailyLimit, "l", cfg.GuestDailyLimit, "guest daily operation limit")
	fs.BoolVar(&cfg.Debug, "v", cfg.Debug, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
