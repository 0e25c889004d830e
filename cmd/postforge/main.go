// Package main provides the postforge command.
//
// Usage:
//
//	postforge generate "notes..." --audience engineers   Generate a post
//	postforge serve                                      Start the REST API (and MCP over HTTP)
//	postforge status                                     Show service status
//	postforge stop                                       Stop the running service
//	postforge mcp                                        Start the MCP server on stdio
//	postforge prompts                                    Print the active prompts
//	postforge version                                    Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/postforge/internal/api"
	"github.com/ternarybob/postforge/internal/config"
	"github.com/ternarybob/postforge/internal/logger"
)

// version is set via -ldflags at build time
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "postforge",
	Short: "Generate and refine LinkedIn posts with an editor, writer and critic",
	Long: `postforge turns free-form text into a LinkedIn post. An editor cleans up
the text, then a writer drafts and a critic reviews until the requested
number of drafts exists.

Configuration: config.yaml in the data directory (~/.postforge on Linux);
override with --config.`,
	SilenceUsage: true,
}

func main() {
	api.SetVersion(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging.level (debug, info, warn, error)")
}

// loadConfig loads and validates the configuration named by --config and
// sets up the global logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger.SetupLogger(cfg)
	return cfg, nil
}
