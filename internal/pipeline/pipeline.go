package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/larder/internal/cache"
	"github.com/ppiankov/larder/internal/enrich"
	"github.com/ppiankov/larder/internal/extract"
	"github.com/ppiankov/larder/internal/ingredient"
	"github.com/ppiankov/larder/internal/logging"
	"github.com/ppiankov/larder/internal/metrics"
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/units"
	"github.com/ppiankov/larder/internal/util"
	"github.com/ppiankov/larder/internal/worker"
)

// Pipeline orchestrates fetch, extraction, parsing and enrichment
type Pipeline struct {
	fetcher   *Fetcher
	extractor *extract.Extractor
	parser    *ingredient.Parser
	tables    *units.Tables
	renderer  *Renderer
	metrics   *metrics.Recorder
	logger    *zap.Logger
	config    *model.Config
	out       io.Writer
}

// Option configures a pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logging.OrNop(l) }
}

// WithMetrics records pipeline outcomes in m
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithFetcher replaces the fetcher built from the configuration
func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithTables uses custom unit, density and category tables
func WithTables(t *units.Tables) Option {
	return func(p *Pipeline) { p.tables = t }
}

// WithOutput sets where RenderReport prints progress and the summary
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	p := &Pipeline{
		tables: units.Default(),
		logger: zap.NewNop(),
		config: cfg,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.extractor = extract.New(p.logger.Named("extract"))
	p.parser = ingredient.NewParser(p.tables)
	p.renderer = NewRenderer(cfg.Output.IncludeFooter)

	if p.fetcher == nil {
		p.fetcher = newConfiguredFetcher(cfg, p.metrics, p.logger.Named("fetch"))
	}
	return p
}

func newConfiguredFetcher(cfg *model.Config, m *metrics.Recorder, logger *zap.Logger) *Fetcher {
	opts := []FetcherOption{WithFetchLogger(logger), WithFetchMetrics(m)}

	if cfg.HTTP.RespectRobots {
		opts = append(opts, WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, time.Hour)))
	}
	opts = append(opts, WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)))

	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, WithPageCache(cache.NewPageCache(store, cfg.Cache.DiskTTL)))
	}

	return NewFetcher(cfg.HTTP, opts...)
}

// ProcessURL fetches a recipe page and builds its report
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) (*model.RecipeReport, error) {
	fetched, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	sourceURL := fetched.FinalURL
	if sourceURL == "" {
		sourceURL = rawURL
	}

	report, err := p.process(fetched.HTML, sourceURL)
	if err != nil {
		return nil, err
	}
	report.FetchMeta = fetched.Meta
	report.FetchedAt = fetched.FetchedAt

	p.logger.Info("processed recipe",
		zap.String("url", sourceURL),
		zap.String("method", string(report.Method)),
		zap.Int("ingredients", report.Summary.IngredientLines),
		zap.Bool("from_cache", fetched.Meta.FromCache))

	return report, nil
}

// ProcessHTML builds a report from an already downloaded page
func (p *Pipeline) ProcessHTML(html, sourceURL string) (*model.RecipeReport, error) {
	report, err := p.process(html, sourceURL)
	if err != nil {
		return nil, err
	}
	report.FetchedAt = time.Now().UTC()
	return report, nil
}

func (p *Pipeline) process(html, sourceURL string) (*model.RecipeReport, error) {
	out, err := p.extractor.ExtractWithStats(html, sourceURL)
	if err != nil {
		p.metrics.ObserveExtractionError(err)
		return nil, fmt.Errorf("extract: %w", err)
	}

	parsed := p.parser.ParseLines(out.Recipe.Ingredients)

	var stats enrich.Stats
	enricher := enrich.New(enrich.Options{
		Rewrite: p.config.Enrich.Rewrite,
		Metric:  p.config.Enrich.Metric,
		Volume:  p.config.Enrich.Volume,
		Domain:  p.enrichDomain(sourceURL),
		Tables:  p.tables,
		Logger:  p.logger.Named("enrich"),
	})
	enriched := enricher.EnrichAll(parsed, &stats)

	ingredients := make([]model.ReportIngredient, len(enriched))
	for i, ing := range enriched {
		ingredients[i] = model.ReportIngredient{
			ParsedIngredient: ing,
			Category:         p.tables.Categorize(ing.Item),
		}
	}

	report := &model.RecipeReport{
		ID:          uuid.NewString(),
		SourceURL:   sourceURL,
		Method:      out.Method,
		Attempts:    out.Attempts,
		Recipe:      out.Recipe,
		Ingredients: ingredients,
		MetricStats: stats.Metric,
		VolumeStats: stats.Volume,
		Summary:     summarize(enriched, stats),
	}

	p.metrics.ObserveReport(report)
	return report, nil
}

// enrichDomain returns the host used for per-site density conventions
func (p *Pipeline) enrichDomain(sourceURL string) string {
	if !p.config.Enrich.DomainOverrides {
		return ""
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func summarize(ings []model.ParsedIngredient, stats enrich.Stats) model.Summary {
	s := model.Summary{
		IngredientLines: len(ings),
		WeightsAdded:    stats.Metric.Converted() + stats.Volume.Converted,
	}

	seen := make(map[string]bool)
	for _, ing := range ings {
		if len(ing.Measurements) > 0 {
			s.WithMeasurements++
		}
		if ing.Note != nil {
			s.WithNotes++
		}
		if section := ing.SectionString(); section != "" && !seen[section] {
			seen[section] = true
			s.Sections = append(s.Sections, section)
		}
	}

	if s.IngredientLines > 0 {
		s.Coverage = float64(s.WithMeasurements) / float64(s.IngredientLines)
	}
	return s
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.RecipeReport, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(p.out, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(p.out, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(p.out, report)
	return nil
}

// Renderer returns the renderer used for reports
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
