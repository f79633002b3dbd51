// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server for AI assistant integration.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/plantfit/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP lets an assistant read and write your plantfit data through a standardized
protocol. The server communicates via stdin/stdout; logs go to stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "plantfit": {
        "command": "plantfit",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  upsert_record    Create or update a record by key
  update_record    Update an existing record
  delete_record    Delete a record by key
  list_records     List recent rows of a table
  daily_metrics    Daily log with derived metrics
  compare_phases   Omnivor vs Vegan statistics
  get_goals        Goals and goal attainment
  set_goals        Change goals

AVAILABLE RESOURCES:

  plantfit://daily/recent   Last 14 days with derived metrics
  plantfit://summary        Table counts, phase comparison and goals`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(store, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
