package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/spritepack/internal/server"
)

// logLevelEnv selects the server log level; "debug" enables debug output.
const logLevelEnv = "SPRITEPACK_LOG_LEVEL"

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Serve spritepack tools over the Model Context Protocol. Requests are read
from stdin and responses written to stdout, so all logging goes to stderr.
Set ` + logLevelEnv + `=debug for request tracing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv(logLevelEnv) == "debug" {
				c.SetLogLevel(log.DebugLevel)
			}
			c.Logger.Debug("Starting MCP server", "version", version, "commit", commit, "built", date)
			return server.New(c.Logger, version).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
