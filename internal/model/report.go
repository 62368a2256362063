package model

import "time"

// RecipeReport is the complete result of normalizing one recipe page
type RecipeReport struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"source_url"`           // Final URL after redirects
	FetchedAt time.Time `json:"fetched_at"`           // When the page was fetched or processed
	FetchMeta FetchMeta `json:"fetch_meta,omitempty"` // HTTP metadata (zero for offline input)

	Method   ExtractionMethod    `json:"method"`   // Strategy that produced the recipe
	Attempts []ExtractionAttempt `json:"attempts"` // Every strategy tried, in order
	Recipe   RawRecipe           `json:"recipe"`

	Ingredients []ReportIngredient `json:"ingredients"`

	MetricStats MetricConversionStats `json:"metric_stats"`
	VolumeStats VolumeConversionStats `json:"volume_stats"`
	Summary     Summary               `json:"summary"`
}

// ReportIngredient is a parsed ingredient with its grocery aisle
type ReportIngredient struct {
	ParsedIngredient
	Category string `json:"category"`
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code,omitempty"`
	ContentType  string            `json:"content_type,omitempty"`
	Charset      string            `json:"charset,omitempty"` // Charset the body was decoded from
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	FromCache    bool              `json:"from_cache,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Summary condenses how much of the recipe was understood
type Summary struct {
	IngredientLines  int      `json:"ingredient_lines"`  // Lines that produced an ingredient
	WithMeasurements int      `json:"with_measurements"` // Ingredients with at least one measurement
	WithNotes        int      `json:"with_notes"`
	Sections         []string `json:"sections,omitempty"` // Section headers in order of appearance
	WeightsAdded     int      `json:"weights_added"`      // Gram alternatives added by enrichment
	Coverage         float64  `json:"coverage"`           // WithMeasurements / IngredientLines
}
