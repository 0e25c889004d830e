package main

import (
	"github.com/spf13/cobra"

	"github.com/ternarybob/postforge/internal/logger"
	"github.com/ternarybob/postforge/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Aliases: []string{"mcp-server"},
	Short:   "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing the
generate_post and post_stats tools. Logs go to the log file only, since
stdout carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// stdout belongs to the protocol
		cfg.Logging.Output = []string{"file"}
		logger.SetupLogger(cfg)
		defer logger.Stop()

		gen, prompts, err := newGenerator(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		watchPrompts(cmd.Context(), cfg, prompts)

		return mcp.NewServer(cfg, gen, version).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
