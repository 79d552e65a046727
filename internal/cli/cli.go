// Package cli implements the reqsmith command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/reqsmith/reqsmith/pkg/buildinfo"
	"github.com/reqsmith/reqsmith/pkg/cache"
	"github.com/reqsmith/reqsmith/pkg/config"
	"github.com/reqsmith/reqsmith/pkg/errors"
	"github.com/reqsmith/reqsmith/pkg/manifest"
	"github.com/reqsmith/reqsmith/pkg/registry/pypi"
)

// appName is the application name used for directories and display.
const appName = "reqsmith"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Reqsmith checks and formats Python requirements manifests",
		Long:         `Reqsmith is a CLI tool for working with pip requirements manifests: it parses them, lints for unpinned and conflicting declarations, verifies exact pins against the package index, and formats files canonically.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/reqsmith/config.toml)")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the config file once per invocation.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

// newIndex builds the PyPI client from the configured cache backend.
func (c *CLI) newIndex(noCache bool) (*pypi.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := c.newCacheBackend(cfg, noCache)
	if err != nil {
		return nil, err
	}
	client := pypi.NewClient(backend, cfg.Cache.TTLOrDefault())
	if cfg.Index.URL != "" {
		client = client.WithBaseURL(cfg.Index.URL)
	}
	return client, nil
}

func (c *CLI) newCacheBackend(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	// Connection setup for remote backends gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.URL)
	case "mongo":
		return cache.NewMongoCache(ctx, cfg.Cache.URL, cfg.Cache.Database)
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/reqsmith/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadManifest validates the path and parses the file.
func loadManifest(path string) (*manifest.Document, error) {
	if err := errors.ValidateManifestPath(path); err != nil {
		return nil, err
	}
	return manifest.ParseFile(path)
}
