package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/ppiankov/larder/internal/extract"
)

var extractSourceURL string

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <html-file>",
	Short: "Extract the raw recipe from a saved HTML page",
	Long: `Extract runs recipe extraction on a local HTML file without fetching
anything, and prints the method used, every attempt, and the raw recipe as JSON.

Example:
  larder extract pancakes.html --source-url https://www.seriouseats.com/pancakes`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractSourceURL, "source-url", "", "URL the page was saved from")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	out, err := extract.New(logger).ExtractWithStats(string(data), extractSourceURL)
	if err != nil {
		var fe *extract.FallbackError
		if errors.As(err, &fe) {
			for _, a := range fe.Attempts {
				fmt.Fprintf(os.Stderr, "✗ %s: %s\n", a.Method, a.Error)
			}
		}
		return fmt.Errorf("extract failed: %w", err)
	}

	for _, a := range out.Attempts {
		mark := "✓"
		if !a.Success {
			mark = "✗"
		}
		fmt.Fprintf(os.Stderr, "%s %s %s\n", mark, a.Method, a.Error)
	}

	encoded, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
