// Package cli implements the sunwheel command-line interface.
//
// This package provides commands for aggregating weighted records into
// hierarchy datasets, computing sunburst and nodelink layouts, rendering
// them to SVG/PNG/PDF/JSON, zooming into subtrees, and serving the pipeline
// over HTTP. The CLI is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - aggregate: Categorize records into a hierarchy dataset
//   - layout: Compute a visualization layout from a dataset
//   - visualize: Render a computed layout to visual output
//   - render: Go directly from a dataset to visual output
//   - focus: Compute a zoom transition for a node path
//   - explore: Interactively drill into a dataset in the terminal
//   - serve: Expose the pipeline as an HTTP API
//   - cache: Manage the local result cache
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/pkg/buildinfo"
	"github.com/mkarlsen/sunwheel/pkg/cache"
	"github.com/mkarlsen/sunwheel/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "sunwheel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "sunwheel",
		Short:        "Sunwheel visualizes weighted hierarchies as zoomable sunbursts",
		Long:         `Sunwheel is a CLI tool for turning weighted hierarchical data into sunburst charts, with smooth zooming into any subtree and alternative node-link rendering.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.aggregateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.focusCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/sunwheel/).
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

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseFocusPath splits a slash-separated node path into its segments.
// An empty string yields nil.
func parseFocusPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}
