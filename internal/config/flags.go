package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/subkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   operating mode, "local" or "remote"
//	-e string   remote endpoint base URL
//	-k string   remote API key
//	-u string   app user id (empty for an anonymous identity)
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-e", "-k", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "operating mode (local or remote)")
	fs.StringVar(&cfg.Endpoint, "e", cfg.Endpoint, "remote endpoint base URL")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "remote API key")
	fs.StringVar(&cfg.AppUserID, "u", cfg.AppUserID, "app user id")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
