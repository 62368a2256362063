package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/larder/internal/logging"
	"github.com/ppiankov/larder/internal/model"
)

// Processor turns one recipe URL into a report
type Processor interface {
	ProcessURL(ctx context.Context, url string) (*model.RecipeReport, error)
}

// RecipeJob processes one URL
type RecipeJob struct {
	URL       string
	Processor Processor
}

// Execute runs the processor and times it
func (j *RecipeJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Processor.ProcessURL(ctx, j.URL)
	return &RecipeResult{
		URL:      j.URL,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
}

// RecipeResult is the outcome of one RecipeJob. Report is nil when Error is set.
type RecipeResult struct {
	URL      string
	Report   *model.RecipeReport
	Error    error
	Duration time.Duration
}

// Err returns the processing error
func (r *RecipeResult) Err() error {
	return r.Error
}

// BatchProcessor processes recipe URLs concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(processor Processor, concurrency int, logger *zap.Logger) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
		logger:      logging.OrNop(logger),
	}
}

// ProcessURLs processes urls and returns results in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*RecipeResult {
	if len(urls) == 0 {
		return []*RecipeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, u := range urls {
		if !pool.Submit(&RecipeJob{URL: u, Processor: b.processor}) {
			b.logger.Warn("batch cancelled before all URLs were queued", zap.String("url", u))
			break
		}
	}

	results := pool.Wait()

	out := make([]*RecipeResult, len(results))
	for i, r := range results {
		out[i] = r.(*RecipeResult)
		if out[i].Error != nil {
			b.logger.Debug("recipe failed", zap.String("url", out[i].URL), zap.Error(out[i].Error))
		} else {
			b.logger.Debug("recipe processed",
				zap.String("url", out[i].URL),
				zap.Duration("duration", out[i].Duration))
		}
	}
	return out
}

// ProcessFile reads URLs from a file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*RecipeResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs one per line, skipping blanks, # comments and duplicates
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return urls, nil
}

// BatchSummary totals a batch run
type BatchSummary struct {
	Total        int                            `json:"total"`
	Succeeded    int                            `json:"succeeded"`
	Failed       int                            `json:"failed"`
	Methods      map[model.ExtractionMethod]int `json:"methods"`
	Ingredients  int                            `json:"ingredients"`
	WeightsAdded int                            `json:"weights_added"`
	MetricStats  model.MetricConversionStats    `json:"metric_stats"`
	VolumeStats  model.VolumeConversionStats    `json:"volume_stats"`
	Elapsed      time.Duration                  `json:"elapsed"`
}

// Summarize totals results. Elapsed is the sum of per-URL durations.
func Summarize(results []*RecipeResult) BatchSummary {
	s := BatchSummary{
		Total:   len(results),
		Methods: make(map[model.ExtractionMethod]int),
	}
	for _, r := range results {
		s.Elapsed += r.Duration
		if r.Error != nil || r.Report == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Methods[r.Report.Method]++
		s.Ingredients += r.Report.Summary.IngredientLines
		s.WeightsAdded += r.Report.Summary.WeightsAdded
		s.MetricStats.Merge(r.Report.MetricStats)
		s.VolumeStats.Merge(r.Report.VolumeStats)
	}
	return s
}
