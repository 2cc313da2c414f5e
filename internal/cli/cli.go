// Package cli implements the lineageflow command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/creditdesk/lineageflow/internal/config"
	"github.com/creditdesk/lineageflow/pkg/buildinfo"
	"github.com/creditdesk/lineageflow/pkg/cache"
	"github.com/creditdesk/lineageflow/pkg/client"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
	"github.com/creditdesk/lineageflow/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lineageflow"

// stdio is the file argument meaning stdin or stdout.
const stdio = "-"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "lineageflow lays out data lineage graphs",
		Long: `lineageflow computes left-to-right layered layouts for data lineage graphs
(datasets, operations, endpoints, services, repositories) and renders them as
JSON, SVG, PNG, PDF, interactive HTML or Graphviz DOT.

Graphs come from JSON files, exported lineage events or a running lineage
service.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/lineageflow/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.eventsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration and attaches the logger to the
// command context.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend, "lineage", cfg.Lineage.BaseURL)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The lineage client is
// attached when a service URL is configured.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	lc, err := c.Config.Client(client.WithLogger(c.Logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	// Fetched graphs are scoped per service so that two services sharing
	// one cache never see each other's graphs.
	var keyer cache.Keyer
	if lc != nil {
		keyer = cache.NewScopedKeyer(nil, serviceScope(lc.BaseURL()))
	}

	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.GraphTTL = c.Config.Cache.GraphTTL
	runner.Client = lc
	return runner, nil
}

// serviceScope is the cache key prefix of a lineage service.
func serviceScope(baseURL string) string {
	return "svc:" + cache.Hash([]byte(baseURL))[:12] + ":"
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, c.Config.Cache.Options)
	if err != nil {
		// A broken cache only costs speed.
		c.Logger.Warn("cache unavailable, continuing without it", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatJSON}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// =============================================================================
// I/O Helpers
// =============================================================================

// openInput opens path for reading; "-" or "" is stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == stdio {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

// writeOutput writes data to path; "-" or "" is stdout.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// trimExt drops the file extension from path.
func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
