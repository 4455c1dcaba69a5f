// Package cli implements the spritepack command-line interface.
//
// # Commands
//
//   - pack: Pack a directory of sprites into spritesheet pages and manifests
//   - palette: Show the palette of an image, or compare two images
//   - serve: Run the MCP server on stdin/stdout
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Log output
// goes to stderr; command results go to stdout.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"     // semantic version (e.g., "v1.2.3")
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version. main
// calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "spritepack",
		Short:         "spritepack packs sprites into spritesheets",
		Long:          `spritepack packs a directory of sprite images into spritesheet pages with TexturePacker-style JSON manifests, keeping sprites with similar palettes on the same page.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("spritepack %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.serveCommand())

	return root
}
