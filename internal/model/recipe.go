package model

// RawRecipe is recipe data pulled from a page before any ingredient parsing.
// Ingredients and Instructions are newline-joined blobs.
type RawRecipe struct {
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Ingredients     string            `json:"ingredients"`  // One ingredient per line
	Instructions    string            `json:"instructions"` // Steps separated by blank lines
	ImageURLs       []string          `json:"image_urls"`
	SourceURL       string            `json:"source_url,omitempty"`
	SourceName      string            `json:"source_name,omitempty"` // "Seriouseats.com"
	Servings        string            `json:"servings,omitempty"`
	PrepTime        string            `json:"prep_time,omitempty"` // ISO 8601 duration as published
	CookTime        string            `json:"cook_time,omitempty"`
	TotalTime       string            `json:"total_time,omitempty"`
	Rating          *float64          `json:"rating,omitempty"`
	Difficulty      string            `json:"difficulty,omitempty"`
	NutritionalInfo map[string]string `json:"nutritional_info,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Categories      []string          `json:"categories,omitempty"`
}

// ExtractionMethod identifies how a recipe was obtained
type ExtractionMethod string

const (
	MethodJSONLD      ExtractionMethod = "json_ld"      // <script type="application/ld+json">
	MethodMicrodata   ExtractionMethod = "microdata"    // itemtype/itemprop attributes
	MethodPaprika     ExtractionMethod = "paprika"      // Paprika app export
	MethodPhotoUpload ExtractionMethod = "photo_upload" // Recipe transcribed from a photo
)

// ExtractionAttempt records the outcome of one extraction method
type ExtractionAttempt struct {
	Method  ExtractionMethod `json:"method"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
}

// ExtractionOutput is a successful extraction plus the attempts that led to it
type ExtractionOutput struct {
	Method   ExtractionMethod    `json:"method"`
	Recipe   RawRecipe           `json:"raw_recipe"`
	Attempts []ExtractionAttempt `json:"attempts"`
}
