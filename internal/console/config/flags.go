package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/owncent-admin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the store endpoint
//	-n string   tenant identifier
//	-f string   local credential database path
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointURL, "a", cfg.EndpointURL, "base URL of the store endpoint")
	fs.StringVar(&cfg.TenantID, "n", cfg.TenantID, "tenant identifier")
	fs.StringVar(&cfg.LocalDBPath, "f", cfg.LocalDBPath, "local credential database path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
