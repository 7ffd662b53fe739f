package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-e", "http://minauth.example", "-d", "db", "-r", "redis:6379", "-l", "120",
			"-p", "pepper", "-g", "sha3-256", "-s", "secret", "-t", "30",
			"-w", "8", "-o", "/var/lib/minauth", "-i", "2",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:9090",
				ServerURL:             "http://minauth.example",
				DatabaseDSN:           "db",
				RedisAddr:             "redis:6379",
				CacheTTL:              120 * time.Second,
				PasswordSecret:        "pepper",
				DigestAlgorithm:       "sha3-256",
				SecretKey:             "secret",
				TokenValidityDuration: 30 * time.Minute,
				WorkerCount:           8,
				WorkspaceDir:          "/var/lib/minauth",
				DispatchInterval:      2 * time.Second,
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
