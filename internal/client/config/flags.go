package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL (default from Config)
//	-i int      sync interval in seconds (default from Config)
//	-d string   path of the local state database
//	-l string   log level
//
// Note: args are filtered to the flags handled here using flagx.FilterArgs,
// so the config file flag does not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "invoice sync interval (in seconds)")
	fs.StringVar(&cfg.StatePath, "d", cfg.StatePath, "path to the local state database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
	return nil
}
