package enrich

import (
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/units"
)

// AddMetricWeight appends a gram measurement converted from the first ounce
// or pound measurement. Ingredients that already carry a metric weight are
// left alone. The input is not modified.
func AddMetricWeight(ing model.ParsedIngredient, stats *model.MetricConversionStats) model.ParsedIngredient {
	return addMetricWeight(units.Default(), ing, stats)
}

func addMetricWeight(tables *units.Tables, ing model.ParsedIngredient, stats *model.MetricConversionStats) model.ParsedIngredient {
	if stats == nil {
		stats = &model.MetricConversionStats{}
	}

	var source *model.Measurement
	for i := range ing.Measurements {
		canonical := tables.CanonicalUnit(ing.Measurements[i].UnitString())
		if units.IsMetricWeight(canonical) {
			stats.SkippedAlreadyMetric++
			return ing
		}
		if source == nil && (canonical == "oz" || canonical == "lb") {
			source = &ing.Measurements[i]
		}
	}

	if source == nil {
		stats.SkippedNoUSWeight++
		return ing
	}

	unit := tables.CanonicalUnit(source.UnitString())
	factor := units.GramsPerOz
	if unit == "lb" {
		factor = units.GramsPerLb
	}

	if source.Amount == nil {
		stats.SkippedUnparseable++
		return ing
	}
	grams, ok := convertAmount(*source.Amount, factor)
	if !ok {
		stats.SkippedUnparseable++
		return ing
	}

	out := ing.Clone()
	out.Measurements = append(out.Measurements, model.NewMeasurement(grams, "g"))

	if unit == "lb" {
		stats.ConvertedLb++
	} else {
		stats.ConvertedOz++
	}
	return out
}
