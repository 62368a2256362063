package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/larder/internal/metrics"
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/pipeline"
	"github.com/ppiankov/larder/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	metricsFile  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Process recipe URLs from a file in parallel",
	Long: `Batch processes many recipe pages concurrently:
- Read URLs from the input file (one per line, # comments and duplicates skipped)
- Fetch pages with per-site pacing and robots.txt compliance
- Write a JSON report and a Markdown recipe card per URL
- Print batch totals and optionally write Prometheus textfile metrics

Example:
  larder batch urls.txt
  larder batch urls.txt --concurrency 8 --output-dir ./recipes
  larder batch urls.txt --metrics-file /var/lib/node_exporter/larder.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config, max NumCPU*4)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./larder-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	addFetchFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFetchFlags(cmd.Flags(), cfg)
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if maxWorkers := runtime.NumCPU() * 4; cfg.Concurrency.Workers > maxWorkers {
		cfg.Concurrency.Workers = maxWorkers
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Larder Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	recorder := metrics.New()
	p := pipeline.NewPipeline(cfg, pipeline.WithLogger(logger), pipeline.WithMetrics(recorder))
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, logger.Named("batch"))

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := p.Renderer()
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, result.Error)
			continue
		}

		base := filepath.Join(outputDir, reportFilename(result.Report))
		if err := renderer.RenderJSON(result.Report, base+".json"); err != nil {
			logger.Error("write JSON report", zap.String("url", result.URL), zap.Error(err))
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, base+".md"); err != nil {
			logger.Error("write Markdown report", zap.String("url", result.URL), zap.Error(err))
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%s, %d ingredients, %d weights added)\n",
			result.Report.Recipe.Title, result.Report.Method,
			result.Report.Summary.IngredientLines, result.Report.Summary.WeightsAdded)
	}

	printBatchSummary(worker.Summarize(results))

	if metricsFile != "" {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		fmt.Fprintf(os.Stderr, "  Metrics:   %s\n\n", metricsFile)
	}
	return nil
}

func printBatchSummary(s worker.BatchSummary) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", s.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", s.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", s.Failed)

	methods := make([]string, 0, len(s.Methods))
	for m := range s.Methods {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		fmt.Fprintf(os.Stderr, "    %-12s %d\n", m, s.Methods[model.ExtractionMethod(m)])
	}

	fmt.Fprintf(os.Stderr, "  Ingredients: %d (weights added: %d)\n", s.Ingredients, s.WeightsAdded)
	fmt.Fprintf(os.Stderr, "  Metric:    %d oz, %d lb converted\n", s.MetricStats.ConvertedOz, s.MetricStats.ConvertedLb)
	fmt.Fprintf(os.Stderr, "  Volume:    %d converted, %d without density\n", s.VolumeStats.Converted, s.VolumeStats.SkippedUnknownIngredient)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")
}

// reportFilename builds "classic-pancakes-1a2b3c4d" from the title and report ID
func reportFilename(report *model.RecipeReport) string {
	slug := slugify(report.Recipe.Title)
	id := report.ID
	if len(id) > 8 {
		id = id[:8]
	}
	switch {
	case slug == "":
		return id
	case id == "":
		return slug
	}
	return slug + "-" + id
}

// slugify lowercases s and joins its letter and digit runs with hyphens
func slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if len(slug) > 80 {
		slug = strings.TrimRight(truncateRunes(slug, 80), "-")
	}
	return slug
}

// truncateRunes cuts s to at most n bytes without splitting a rune
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
