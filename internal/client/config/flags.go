package config

import (
	"flag"
	"os"
	"time"

	"github.com/avetrovs/vitrine/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path of the local SQLite database file
//	-a string   base URL of the remote content API
//	-s string   session token secret key
//	-r int      remote request timeout in seconds
//	-i int      online check interval in seconds
//
// os.Args is first filtered to just these flags via flagx.FilterArgs, so
// flags owned by other components do not collide.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-a", "-s", "-r", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDBPath, "f", cfg.LocalDBPath, "local database file")
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the remote server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	remoteTimeout := fs.Int("r", int(cfg.RemoteTimeout.Seconds()), "remote request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
