package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/minauth/internal/flagx"
	"github.com/dmitrijs2005/minauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "5m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	ServerURL             string         `json:"server_url"`
	DatabaseDSN           string         `json:"database_dsn"`
	RedisAddr             string         `json:"redis_addr"`
	CacheTTL              timex.Duration `json:"cache_ttl"`
	PasswordSecret        string         `json:"password_secret"`
	DigestAlgorithm       string         `json:"digest_algorithm"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	WorkerCount           int            `json:"worker_count"`
	WorkspaceDir          string         `json:"workspace_dir"`
	DispatchInterval      timex.Duration `json:"dispatch_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.ServerURL = c.ServerURL
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.CacheTTL = time.Duration(c.CacheTTL.Duration)
	config.PasswordSecret = c.PasswordSecret
	config.DigestAlgorithm = c.DigestAlgorithm
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.WorkerCount = c.WorkerCount
	config.WorkspaceDir = c.WorkspaceDir
	config.DispatchInterval = time.Duration(c.DispatchInterval.Duration)
}
