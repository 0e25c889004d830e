package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/postforge/internal/render"
	"github.com/ternarybob/postforge/pkg/sdk"
)

var generateCmd = &cobra.Command{
	Use:   "generate [text]",
	Short: "Generate a post from text",
	Long: `Generate a LinkedIn post. The source text is taken from the arguments,
from --file, or from standard input.`,
	Example: `  postforge generate "We cut build times in half" --audience "platform engineers"
  postforge generate --file notes.md --audience founders --drafts 2 --versions
  cat notes.md | postforge generate --audience recruiters --json`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("audience", "a", "", "Target audience (required)")
	generateCmd.Flags().IntP("drafts", "n", 0, "Number of drafts (default: generation.default_drafts)")
	generateCmd.Flags().StringP("file", "f", "", "Read the source text from a file")
	generateCmd.Flags().Bool("json", false, "Print the whole result as JSON")
	generateCmd.Flags().Bool("versions", false, "Print every draft with its feedback")
	generateCmd.Flags().Bool("html", false, "Print the final post as HTML")
	_ = generateCmd.MarkFlagRequired("audience")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	text, err := sourceText(cmd, args)
	if err != nil {
		return err
	}

	audience, _ := cmd.Flags().GetString("audience")
	if strings.TrimSpace(audience) == "" {
		return errors.New("--audience must not be empty")
	}

	var requested *int
	if cmd.Flags().Changed("drafts") {
		n, _ := cmd.Flags().GetInt("drafts")
		requested = &n
	}
	drafts, err := cfg.ResolveDrafts(requested)
	if err != nil {
		return err
	}

	gen, _, err := newGenerator(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}

	result, err := gen.Run(cmd.Context(), text, audience, drafts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	versions, _ := cmd.Flags().GetBool("versions")
	asHTML, _ := cmd.Flags().GetBool("html")
	out := cmd.OutOrStdout()

	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case versions:
		printVersions(out, result)
		return nil
	case asHTML:
		html, err := render.HTML(result.FinalPost)
		if err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		fmt.Fprint(out, html)
		return nil
	default:
		fmt.Fprintln(out, result.FinalPost)
		return nil
	}
}

// sourceText picks the text from args, --file or stdin, in that order.
func sourceText(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")

	var text string
	switch {
	case len(args) > 0 && file != "":
		return "", errors.New("give the text as arguments or with --file, not both")
	case len(args) > 0:
		text = strings.Join(args, " ")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("no source text given")
	}
	return text, nil
}

func printVersions(w io.Writer, result *sdk.Result) {
	for _, v := range result.AllVersions {
		st := sdk.PostStats(v.Content)
		fmt.Fprintf(w, "--- Version %d (%d chars, %d hashtags) ---\n", v.Version, st.Characters, st.Hashtags)
		fmt.Fprintln(w, v.Content)
		if v.Feedback != nil {
			fmt.Fprintln(w, "\n--- Feedback ---")
			fmt.Fprintln(w, *v.Feedback)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Status: %s\n", result.Status)
}
