package model

// MetricConversionStats counts outcomes of imperial→metric weight enrichment
type MetricConversionStats struct {
	ConvertedOz          int `json:"converted_oz"`
	ConvertedLb          int `json:"converted_lb"`
	SkippedNoUSWeight    int `json:"skipped_no_us_weight"`
	SkippedAlreadyMetric int `json:"skipped_already_metric"`
	SkippedUnparseable   int `json:"skipped_unparseable"`
}

// Converted returns the total number of conversions
func (s MetricConversionStats) Converted() int {
	return s.ConvertedOz + s.ConvertedLb
}

// Merge adds other's counters into s
func (s *MetricConversionStats) Merge(other MetricConversionStats) {
	s.ConvertedOz += other.ConvertedOz
	s.ConvertedLb += other.ConvertedLb
	s.SkippedNoUSWeight += other.SkippedNoUSWeight
	s.SkippedAlreadyMetric += other.SkippedAlreadyMetric
	s.SkippedUnparseable += other.SkippedUnparseable
}

// VolumeConversionStats counts outcomes of volume→weight enrichment
type VolumeConversionStats struct {
	Converted                int      `json:"converted"`
	SkippedNoVolume          int      `json:"skipped_no_volume"`
	SkippedUnknownIngredient int      `json:"skipped_unknown_ingredient"`
	SkippedAlreadyHasWeight  int      `json:"skipped_already_has_weight"`
	SkippedUnparseable       int      `json:"skipped_unparseable"`
	UnknownIngredients       []string `json:"unknown_ingredients,omitempty"` // Items with no density entry
}

// Merge adds other's counters into s
func (s *VolumeConversionStats) Merge(other VolumeConversionStats) {
	s.Converted += other.Converted
	s.SkippedNoVolume += other.SkippedNoVolume
	s.SkippedUnknownIngredient += other.SkippedUnknownIngredient
	s.SkippedAlreadyHasWeight += other.SkippedAlreadyHasWeight
	s.SkippedUnparseable += other.SkippedUnparseable
	s.UnknownIngredients = append(s.UnknownIngredients, other.UnknownIngredients...)
}
