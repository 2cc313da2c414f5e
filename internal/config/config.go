// Package config loads lineageflow settings.
//
// Sources, later ones winning:
//
//  1. built-in defaults
//  2. the TOML file ($XDG_CONFIG_HOME/lineageflow/config.toml or --config)
//  3. a .env file in the working directory
//  4. LINEAGEFLOW_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	max_nodes = 5000
//
//	[layout]
//	horizontal_spacing = 300
//	vertical_spacing = 100
//	node_height = 80
//	anchor = "top-left"
//
//	[lineage]
//	base_url = "http://gateway:8081"
//	timeout = "10s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	graph_ttl = "30m"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/creditdesk/lineageflow/pkg/cache"
	"github.com/creditdesk/lineageflow/pkg/client"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
	"github.com/creditdesk/lineageflow/pkg/server"
)

// EnvFile is the dotenv file read from the working directory.
const EnvFile = ".env"

// Config is the complete configuration.
type Config struct {
	MaxNodes int `toml:"max_nodes"`

	Layout  layout.Config `toml:"layout"`
	Lineage LineageConfig `toml:"lineage"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// LineageConfig locates the lineage service.
type LineageConfig struct {
	// BaseURL is the service root. Empty disables fetching.
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
	// Token is sent as a bearer token when set.
	Token string `toml:"token"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	cache.Options

	// GraphTTL overrides how long fetched graphs are kept.
	GraphTTL time.Duration `toml:"graph_ttl"`
}

// ServerConfig configures `lineageflow serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxNodes: lineage.DefaultMaxNodes,
		Layout:   layout.DefaultConfig(),
		Lineage:  LineageConfig{Timeout: client.DefaultTimeout},
		Cache: CacheConfig{
			Options:  cache.Options{Backend: cache.BackendFile},
			GraphTTL: cache.GraphTTL,
		},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lineageflow/config.toml, falling back
// to the platform user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lineageflow", "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lineageflow", "config.toml"), nil
}

// Load reads the configuration. An empty path means [DefaultPath], which may
// be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}

	dotenv, err := godotenv.Read(EnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", EnvFile)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	return load(path, explicit, lookup)
}

func load(path string, explicit bool, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.MaxNodes < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "max_nodes must not be negative, got %d", c.MaxNodes)
	}
	if c.Lineage.BaseURL != "" {
		if err := apperrors.ValidateURL(c.Lineage.BaseURL); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "lineage.base_url")
		}
	}
	if c.Lineage.Timeout < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "lineage.timeout must not be negative")
	}
	if !slices.Contains(cache.Backends, strings.ToLower(c.Cache.Backend)) {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be one of: %s)", c.Cache.Backend, strings.Join(cache.Backends, ", "))
	}
	if c.Cache.GraphTTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache.graph_ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}

// PipelineOptions returns the pipeline defaults described by c.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:   c.Layout,
		MaxNodes: c.MaxNodes,
	}
}

// Client returns a lineage service client, or nil when no base URL is
// configured.
func (c *Config) Client(opts ...client.Option) (*client.Client, error) {
	if c.Lineage.BaseURL == "" {
		return nil, nil
	}
	if c.Lineage.Token != "" {
		opts = append([]client.Option{client.WithHeaders(map[string]string{
			"Authorization": "Bearer " + c.Lineage.Token,
		})}, opts...)
	}
	if c.Lineage.Timeout > 0 {
		opts = append([]client.Option{client.WithTimeout(c.Lineage.Timeout)}, opts...)
	}
	return client.New(c.Lineage.BaseURL, opts...)
}
