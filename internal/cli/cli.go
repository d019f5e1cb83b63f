// Package cli implements the diagramprep command-line interface.
//
// This package provides commands for preparing diagram notation, validating
// it, rendering prepared notation to SVG, and serving the pipeline over
// HTTP. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - prepare: Normalize and optimize raw notation text
//   - validate: Check notation and report a precise verdict
//   - render: Run the full pipeline and write SVG output
//   - serve: Expose the pipeline as a JSON HTTP API
//   - cache: Manage the prepared-text and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/inkfold/diagramprep/pkg/buildinfo"
	"github.com/inkfold/diagramprep/pkg/cache"
	"github.com/inkfold/diagramprep/pkg/pipeline"
	"github.com/inkfold/diagramprep/pkg/renderer"
	"github.com/inkfold/diagramprep/pkg/renderer/dotengine"
	"github.com/inkfold/diagramprep/pkg/renderer/mmdc"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "diagramprep"
)

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
	Config *Config
}

// New creates a new CLI instance with a default logger and on-disk config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: LoadConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Diagramprep prepares diagram notation for rendering",
		Long:         `Diagramprep normalizes raw diagram notation, untangles overlapping connections in architecture diagrams, validates the result, and renders it to SVG with graceful fallbacks when rendering fails.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.prepareCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool, engine renderer.Engine) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger, engine), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.Redis.Addr != "" {
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newEngine resolves the rendering engine by name. The dot-preview engine
// is always available; mmdc requires the mermaid CLI on PATH.
func (c *CLI) newEngine(name string) (renderer.Engine, error) {
	if name == "" {
		name = c.Config.Engine
	}
	switch name {
	case "", "dot", "dot-preview":
		return dotengine.New(), nil
	case "mmdc":
		eng := mmdc.New(c.Config.MmdcBinary)
		if !eng.Available() {
			return nil, fmt.Errorf("mmdc not found on PATH (install the mermaid CLI or use --engine dot)")
		}
		return eng, nil
	default:
		return nil, fmt.Errorf("unknown engine: %s (must be 'dot' or 'mmdc')", name)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/diagramprep/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.CacheDir != "" {
		return c.Config.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
