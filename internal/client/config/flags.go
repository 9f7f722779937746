package config

import (
	"flag"
	"os"
	"time"

	"github.com/dev-c-webd/tube-v/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only -a, -d and -t are looked at; everything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.Pick(os.Args[1:], "a", "d", "t")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	fs.StringVar(&cfg.SessionDB, "d", cfg.SessionDB, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
