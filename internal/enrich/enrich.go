// Package enrich adds derived weight measurements to parsed ingredients.
//
// Stages run in a fixed order: name rewrite, imperial→metric weight, then
// volume→weight. The volume stage must see a gram value added by the metric
// stage so it does not add a second one. Each stage appends at most one
// measurement and records its outcome in a stats accumulator.
package enrich

import (
	"go.uber.org/zap"

	"github.com/ppiankov/larder/internal/logging"
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/units"
)

// Stats accumulates enrichment outcomes across ingredients
type Stats struct {
	Rewritten int                         `json:"rewritten"`
	Metric    model.MetricConversionStats `json:"metric"`
	Volume    model.VolumeConversionStats `json:"volume"`
}

// Merge adds other's counters into s
func (s *Stats) Merge(other Stats) {
	s.Rewritten += other.Rewritten
	s.Metric.Merge(other.Metric)
	s.Volume.Merge(other.Volume)
}

// Rewrite replaces the item with its preferred spelling when one is known
func Rewrite(ing model.ParsedIngredient) (model.ParsedIngredient, bool) {
	return rewrite(units.Default(), ing)
}

func rewrite(tables *units.Tables, ing model.ParsedIngredient) (model.ParsedIngredient, bool) {
	name, ok := tables.Rewrite(ing.Item)
	if !ok || name == ing.Item {
		return ing, false
	}
	ing.Item = name
	return ing, true
}

// Options selects enrichment stages and context
type Options struct {
	Rewrite bool
	Metric  bool
	Volume  bool
	Domain  string // Source site, for density conventions ("smittenkitchen.com")
	Tables  *units.Tables
	Logger  *zap.Logger
}

// DefaultOptions enables every stage
func DefaultOptions() Options {
	return Options{Rewrite: true, Metric: true, Volume: true}
}

// Enricher runs the enabled stages over ingredients
type Enricher struct {
	opts   Options
	tables *units.Tables
	logger *zap.Logger
}

// New creates an enricher
func New(opts Options) *Enricher {
	tables := opts.Tables
	if tables == nil {
		tables = units.Default()
	}
	return &Enricher{
		opts:   opts,
		tables: tables,
		logger: logging.OrNop(opts.Logger),
	}
}

// Enrich runs the enabled stages over one ingredient
func (e *Enricher) Enrich(ing model.ParsedIngredient, stats *Stats) model.ParsedIngredient {
	if stats == nil {
		stats = &Stats{}
	}

	if e.opts.Rewrite {
		var ok bool
		before := ing.Item
		if ing, ok = rewrite(e.tables, ing); ok {
			stats.Rewritten++
			e.logger.Debug("rewrote ingredient name", zap.String("from", before), zap.String("to", ing.Item))
		}
	}

	if e.opts.Metric {
		before := stats.Metric
		ing = addMetricWeight(e.tables, ing, &stats.Metric)
		if stats.Metric.SkippedUnparseable > before.SkippedUnparseable {
			e.logger.Debug("metric weight skipped: unparseable amount", zap.String("item", ing.Item))
		}
	}

	if e.opts.Volume {
		before := stats.Volume.SkippedUnknownIngredient
		ing = addVolumeWeight(e.tables, e.opts.Domain, ing, &stats.Volume)
		if stats.Volume.SkippedUnknownIngredient > before {
			e.logger.Debug("volume weight skipped: no density", zap.String("item", ing.Item), zap.String("domain", e.opts.Domain))
		}
	}

	return ing
}

// EnrichAll enriches a list of ingredients, returning a new slice
func (e *Enricher) EnrichAll(ings []model.ParsedIngredient, stats *Stats) []model.ParsedIngredient {
	out := make([]model.ParsedIngredient, len(ings))
	for i, ing := range ings {
		out[i] = e.Enrich(ing, stats)
	}
	return out
}
