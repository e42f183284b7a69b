package cmd

import (
	"github.com/maintinsight/maintinsight/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the maintinsight MCP server",
	Long:  `Launch an MCP server on stdio that allows AI agents to score maintenance batches via standard tools.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Tool handlers never print headers, stdio carries the protocol.
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		return loadModel()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, modelHandle, cacheManager)
	},
}
