package cmd

import (
	"github.com/huangsam/redundant/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Redundant MCP server",
	Long:  `Launch an MCP server that lets AI agents scan catalogs and compare records via standard tools.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// The server takes catalogs per request, so validate the rest of the
		// config against a placeholder path.
		return sharedSetup(rootCtx, cmd, []string{"-"})
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, analysisStore)
	},
}
