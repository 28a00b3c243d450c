package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-t", "-d", "-b", "-l"}

// parseFlags populates selected Config fields from command-line flags.
// Arguments it does not know are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "rendezvous server URL")
	pingInterval := fs.Int("i", int(cfg.PingInterval.Seconds()), "ping interval (in seconds)")
	pingTimeout := fs.Int("t", int(cfg.PingTimeout.Seconds()), "ping timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DirectoryBackend, "b", cfg.DirectoryBackend, "directory backend (json or sqlite)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// only touch durations that were given, so sub-second JSON values survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.PingInterval = time.Duration(*pingInterval) * time.Second
		case "t":
			cfg.PingTimeout = time.Duration(*pingTimeout) * time.Second
		}
	})
	return nil
}

// dataDirFlag returns the -d value, if any, without touching other flags.
func dataDirFlag(args []string) string {
	var dir string
	fs := flag.NewFlagSet("datadir", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&dir, "d", "", "data directory")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-d"}))
	return dir
}
