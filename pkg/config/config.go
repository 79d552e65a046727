// Package config loads tool configuration from a TOML file.
//
// The file lives at ~/.config/reqsmith/config.toml by default and every
// field is optional; zero values fall back to built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/reqsmith/reqsmith/pkg/errors"
	"github.com/reqsmith/reqsmith/pkg/lint"
)

// Config is the on-disk configuration.
type Config struct {
	Index IndexConfig `toml:"index"`
	Cache CacheConfig `toml:"cache"`
	Lint  LintConfig  `toml:"lint"`
}

// IndexConfig controls which package index pin verification talks to.
type IndexConfig struct {
	// URL of the JSON API, e.g. a private PyPI mirror. Empty means the
	// public index.
	URL string `toml:"url"`
}

// CacheConfig selects the cache backend for index responses.
type CacheConfig struct {
	// Backend is one of "file", "redis", "mongo", "none". Empty means "file".
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`
	// URL is the connection string for redis/mongo backends.
	URL string `toml:"url"`
	// Database is the mongo database name. Empty means "reqsmith".
	Database string `toml:"database"`
	// TTL is how long index responses stay fresh, e.g. "24h".
	TTL duration `toml:"ttl"`
}

// LintConfig carries per-rule severity overrides, keyed by rule code.
// An empty severity disables the rule.
type LintConfig struct {
	Severity map[string]string `toml:"severity"`
}

// duration wraps time.Duration with TOML string decoding ("24h", "90m").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:  "file",
			Database: "reqsmith",
			TTL:      duration{24 * time.Hour},
		},
	}
}

// DefaultPath returns ~/.config/reqsmith/config.toml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reqsmith", "config.toml")
}

// Load reads the configuration file at path. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "mongo", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	for code, sev := range c.Lint.Severity {
		switch lint.Severity(sev) {
		case "", lint.SeverityError, lint.SeverityWarning, lint.SeverityInfo:
		default:
			return errors.New(errors.ErrCodeInvalidInput, "invalid severity %q for rule %s", sev, code)
		}
	}
	return nil
}

// TTLOrDefault returns the cache TTL, falling back to the default when unset.
func (c *CacheConfig) TTLOrDefault() time.Duration {
	if c.TTL.Duration <= 0 {
		return 24 * time.Hour
	}
	return c.TTL.Duration
}

// LintOptions converts the severity overrides into lint options.
func (c *Config) LintOptions() lint.Options {
	if len(c.Lint.Severity) == 0 {
		return lint.Options{}
	}
	opts := lint.Options{Severity: make(map[lint.Code]lint.Severity, len(c.Lint.Severity))}
	for code, sev := range c.Lint.Severity {
		opts.Severity[lint.Code(code)] = lint.Severity(sev)
	}
	return opts
}
