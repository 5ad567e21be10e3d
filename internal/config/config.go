// Package config loads ambient defaults for the CLI. Values come from an
// optional adlib.yaml next to the binary and ADLIB_-prefixed environment
// variables, env winning over file. Flags parsed in cmd/adlib override
// everything here.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigFile is consulted when it exists; its absence is not an
// error.
const DefaultConfigFile = "adlib.yaml"

type Config struct {
	API   APIConfig   `koanf:"api"`
	Trace TraceConfig `koanf:"trace"`
}

type APIConfig struct {
	// BaseURL is the Graph API root, without version segment.
	BaseURL string `koanf:"base_url"`

	// Version is the Graph API version segment, e.g. "v16.0".
	Version string `koanf:"version"`

	// BatchSize is the default page size requested per API call.
	BatchSize int `koanf:"batch_size"`

	// RetryLimit is the default number of retries per failing page.
	RetryLimit int `koanf:"retry_limit"`
}

type TraceConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Load builds the configuration from the default file path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom builds the configuration, reading the yaml file at path when it
// exists, then layering ADLIB_ environment variables on top.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ADLIB_API_BASE_URL -> api.base_url
	if err := k.Load(env.Provider("ADLIB_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "ADLIB_"))
		for _, prefix := range []string{"api_", "trace_"} {
			if strings.HasPrefix(s, prefix) {
				return strings.TrimSuffix(prefix, "_") + "." + strings.TrimPrefix(s, prefix)
			}
		}
		return s
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("api.base_url") {
		k.Set("api.base_url", "https://graph.facebook.com")
	}
	if !k.Exists("api.version") {
		k.Set("api.version", "v16.0")
	}
	if !k.Exists("api.batch_size") {
		k.Set("api.batch_size", 250)
	}
	if !k.Exists("api.retry_limit") {
		k.Set("api.retry_limit", 3)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
