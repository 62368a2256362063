// Package metrics counts extraction, parsing and conversion outcomes in a
// Prometheus registry. Batch runs export it as a node_exporter textfile.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/larder/internal/extract"
	"github.com/ppiankov/larder/internal/model"
)

// Recorder holds the larder collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	Recipes          *prometheus.CounterVec
	ExtractionErrors *prometheus.CounterVec
	IngredientLines  prometheus.Counter
	Measured         prometheus.Counter
	Conversions      *prometheus.CounterVec
	Fetches          *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
}

// New creates a recorder with its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,

		Recipes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "larder_recipes_extracted_total",
				Help: "Recipes extracted, by extraction method",
			},
			[]string{"method"},
		),
		ExtractionErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "larder_extraction_errors_total",
				Help: "Pages that produced no recipe, by error kind",
			},
			[]string{"kind"},
		),
		IngredientLines: f.NewCounter(
			prometheus.CounterOpts{
				Name: "larder_ingredient_lines_total",
				Help: "Ingredient lines parsed",
			},
		),
		Measured: f.NewCounter(
			prometheus.CounterOpts{
				Name: "larder_ingredients_measured_total",
				Help: "Parsed ingredients with at least one measurement",
			},
		),
		Conversions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "larder_weight_conversions_total",
				Help: "Weight enrichment outcomes, by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		Fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "larder_fetches_total",
				Help: "Page fetches, by status",
			},
			[]string{"status"},
		),
		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "larder_fetch_duration_seconds",
				Help:    "Page fetch duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
	}
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveReport records a successful recipe
func (r *Recorder) ObserveReport(report *model.RecipeReport) {
	if r == nil || report == nil {
		return
	}
	r.Recipes.WithLabelValues(string(report.Method)).Inc()
	r.IngredientLines.Add(float64(report.Summary.IngredientLines))
	r.Measured.Add(float64(report.Summary.WithMeasurements))

	m := report.MetricStats
	r.conversion("metric", "converted_oz", m.ConvertedOz)
	r.conversion("metric", "converted_lb", m.ConvertedLb)
	r.conversion("metric", "skipped_no_us_weight", m.SkippedNoUSWeight)
	r.conversion("metric", "skipped_already_metric", m.SkippedAlreadyMetric)
	r.conversion("metric", "skipped_unparseable", m.SkippedUnparseable)

	v := report.VolumeStats
	r.conversion("volume", "converted", v.Converted)
	r.conversion("volume", "skipped_no_volume", v.SkippedNoVolume)
	r.conversion("volume", "skipped_unknown_ingredient", v.SkippedUnknownIngredient)
	r.conversion("volume", "skipped_already_has_weight", v.SkippedAlreadyHasWeight)
	r.conversion("volume", "skipped_unparseable", v.SkippedUnparseable)
}

func (r *Recorder) conversion(stage, outcome string, n int) {
	if n > 0 {
		r.Conversions.WithLabelValues(stage, outcome).Add(float64(n))
	}
}

// ObserveExtractionError records a page that yielded no recipe
func (r *Recorder) ObserveExtractionError(err error) {
	if r == nil || err == nil {
		return
	}
	r.ExtractionErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ObserveFetch records one fetch attempt
func (r *Recorder) ObserveFetch(d time.Duration, fromCache bool, err error) {
	if r == nil {
		return
	}
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case fromCache:
		status = "cached"
	}
	r.Fetches.WithLabelValues(status).Inc()
	if !fromCache {
		r.FetchDuration.Observe(d.Seconds())
	}
}

// ErrorKind classifies an extraction error for labeling.
// The microdata error takes precedence, matching FallbackError's ordering.
func ErrorKind(err error) string {
	var (
		fe *extract.FallbackError
		mf *extract.MissingFieldError
		ij *extract.InvalidJSONError
	)
	if errors.As(err, &fe) {
		err = fe.Err
		if errors.Is(err, extract.ErrNoRecipe) && fe.JSONLDErr != nil {
			err = fe.JSONLDErr
		}
	}
	switch {
	case errors.Is(err, extract.ErrNoRecipe):
		return "no_recipe"
	case errors.As(err, &mf):
		return "missing_field"
	case errors.As(err, &ij):
		return "invalid_json"
	default:
		return "other"
	}
}

// WriteTextfile writes the registry in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
