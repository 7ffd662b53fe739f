package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/minauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-e string   server base URL for the admin CLI
//	-d string   PostgreSQL DSN
//	-r string   Redis address; empty selects the in-process cache
//	-l int      credential cache TTL, seconds
//	-p string   password digest secret
//	-g string   digest algorithm (sha256, sha512, sha3-256)
//	-s string   JWT HMAC secret key
//	-t int      admin token validity, minutes
//	-w int      fulfillment worker count
//	-o string   workspace root directory
//	-i int      dispatcher poll interval, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-e", "-d", "-r", "-l", "-p", "-g", "-s", "-t", "-w", "-o", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.ServerURL, "e", config.ServerURL, "server base URL for the admin CLI")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address (empty for in-process cache)")
	fs.StringVar(&config.PasswordSecret, "p", config.PasswordSecret, "password digest secret")
	fs.StringVar(&config.DigestAlgorithm, "g", config.DigestAlgorithm, "digest algorithm")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.WorkerCount, "w", config.WorkerCount, "fulfillment worker count")
	fs.StringVar(&config.WorkspaceDir, "o", config.WorkspaceDir, "workspace root directory")

	cacheTTL := fs.Int("l", int(config.CacheTTL.Seconds()), "cache_ttl (in seconds)")
	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	dispatchInterval := fs.Int("i", int(config.DispatchInterval.Seconds()), "dispatch_interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CacheTTL = time.Duration(*cacheTTL) * time.Second
	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
	config.DispatchInterval = time.Duration(*dispatchInterval) * time.Second
}
