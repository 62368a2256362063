package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	noRobots    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	scanTimeout time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Extract and normalize the recipe on a single page",
	Long: `Scan fetches one recipe page and:
- Extracts the recipe from JSON-LD, falling back to microdata
- Parses every ingredient line into amount, unit, item and note
- Adds gram weights for ounces, pounds and known volume measurements
- Tags each ingredient with its grocery aisle

Example:
  larder scan https://www.seriouseats.com/classic-pancakes
  larder scan https://smittenkitchen.com/2024/01/cake/ --json cake.json --md cake.md`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	scanCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", 2*time.Minute, "overall scan timeout, including retries")
	scanCmd.Flags().StringP("format", "o", "table", "stdout format: table or json")
	addFetchFlags(scanCmd.Flags())

	_ = viper.BindPFlag("output.format", scanCmd.Flags().Lookup("format"))
}

// addFetchFlags registers the HTTP and cache flags shared by scan and batch
func addFetchFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "per-request HTTP timeout")
	fs.StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read (default from config)")
	fs.BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetch)")
	fs.BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	fs.BoolVar(&noRobots, "no-robots", false, "ignore robots.txt")
	fs.BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	fs.StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	fs.StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// applyFetchFlags overrides config values with flags the user set explicitly
func applyFetchFlags(fs *pflag.FlagSet, cfg *model.Config) {
	if fs.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFetchFlags(cmd.Flags(), cfg)

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", url)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", cfg.HTTP.Timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithLogger(logger), pipeline.WithOutput(cmd.OutOrStdout()))

	report, err := p.ProcessURL(ctx, url)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted via %s\n", report.Method)
		fmt.Fprintf(os.Stderr, "✓ Parsed %d ingredients (%d with measurements)\n", report.Summary.IngredientLines, report.Summary.WithMeasurements)
		fmt.Fprintf(os.Stderr, "✓ Added %d gram weights\n", report.Summary.WeightsAdded)
		fmt.Fprintln(os.Stderr)
	}

	if cfg.Output.Format == "json" {
		return printJSON(cmd, p.Renderer(), report)
	}

	if err := p.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// printJSON writes any requested files, then the report JSON to stdout instead of the table
func printJSON(cmd *cobra.Command, r *pipeline.Renderer, report *model.RecipeReport) error {
	if outJSON != "" {
		if err := r.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if outMD != "" {
		if err := r.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	data, err := pipeline.MarshalJSON(report)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
