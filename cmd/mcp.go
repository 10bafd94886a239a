package cmd

import (
	"github.com/huangsam/sedwarp/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the sedwarp MCP server",
	Long:    `Launch an MCP server on stdio exposing simple_distance, find_min_distance and project_path as tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
