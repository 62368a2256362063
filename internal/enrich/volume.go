package enrich

import (
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/units"
)

// AddVolumeWeight appends a gram measurement computed from the first volume
// measurement and the ingredient's density. Ingredients that already carry
// any weight, including one added by AddMetricWeight, are left alone.
func AddVolumeWeight(ing model.ParsedIngredient, stats *model.VolumeConversionStats) model.ParsedIngredient {
	return addVolumeWeight(units.Default(), "", ing, stats)
}

// AddVolumeWeightForDomain is AddVolumeWeight with the source site's density
// conventions applied (what "salt" means on that site).
func AddVolumeWeightForDomain(ing model.ParsedIngredient, domain string, stats *model.VolumeConversionStats) model.ParsedIngredient {
	return addVolumeWeight(units.Default(), domain, ing, stats)
}

func addVolumeWeight(tables *units.Tables, domain string, ing model.ParsedIngredient, stats *model.VolumeConversionStats) model.ParsedIngredient {
	if stats == nil {
		stats = &model.VolumeConversionStats{}
	}

	var (
		source   *model.Measurement
		cupsEach float64
	)
	for i := range ing.Measurements {
		canonical := tables.CanonicalUnit(ing.Measurements[i].UnitString())
		if units.IsWeight(canonical) {
			stats.SkippedAlreadyHasWeight++
			return ing
		}
		if source == nil {
			if cups, ok := units.CupsPer(canonical); ok {
				source, cupsEach = &ing.Measurements[i], cups
			}
		}
	}

	if source == nil {
		stats.SkippedNoVolume++
		return ing
	}

	gramsPerCup, ok := tables.DensityForDomain(ing.Item, domain)
	if !ok {
		stats.SkippedUnknownIngredient++
		stats.UnknownIngredients = append(stats.UnknownIngredients, ing.Item)
		return ing
	}

	if source.Amount == nil {
		stats.SkippedUnparseable++
		return ing
	}
	grams, ok := convertAmount(*source.Amount, cupsEach*gramsPerCup)
	if !ok {
		stats.SkippedUnparseable++
		return ing
	}

	out := ing.Clone()
	out.Measurements = append(out.Measurements, model.NewMeasurement(grams, "g"))
	stats.Converted++
	return out
}
