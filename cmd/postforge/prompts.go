package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ternarybob/postforge/pkg/agent"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Print the active role prompts",
	Long: `Print the editor, writer and critic prompts after applying
generation.prompts_file. The output is valid TOML and can be used as a
starting point for an overrides file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := agent.OpenPromptStore(cfg.Generation.PromptsFile)
		if err != nil {
			return err
		}

		if store.Path() != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# overrides: %s\n", store.Path())
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(store.Get())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of postforge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "postforge version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd, versionCmd)
}
