package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/larder/internal/enrich"
	"github.com/ppiankov/larder/internal/extract"
	"github.com/ppiankov/larder/internal/metrics"
	"github.com/ppiankov/larder/internal/model"
)

const recipePage = `<html><head>
<script type="application/ld+json">{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Butter Biscuits",
  "recipeYield": "8 biscuits",
  "image": "https://cdn.example.com/biscuits.jpg",
  "recipeIngredient": ["2 cups flour", "8 oz butter", "1 tsp salt"],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Cut the butter into the flour."},
    {"@type": "HowToStep", "text": "Bake at 425F for 15 minutes."}
  ]
}</script>
</head><body></body></html>`

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP = testHTTPConfig()
	cfg.HTTP.RespectRobots = false
	cfg.Cache.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0
	return cfg
}

func TestProcessURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/biscuits" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, recipePage)
	}))
	defer server.Close()

	m := metrics.New()
	p := NewPipeline(testConfig(), WithMetrics(m))

	report, err := p.ProcessURL(context.Background(), server.URL+"/biscuits")
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, server.URL+"/biscuits", report.SourceURL)
	assert.Equal(t, model.MethodJSONLD, report.Method)
	assert.Equal(t, "Butter Biscuits", report.Recipe.Title)
	assert.Equal(t, 200, report.FetchMeta.StatusCode)
	assert.False(t, report.FetchedAt.IsZero())

	require.Len(t, report.Ingredients, 3)

	flour := report.Ingredients[0]
	assert.Equal(t, "flour", flour.Item)
	assert.Equal(t, "Baking", flour.Category)
	require.Len(t, flour.Measurements, 2)
	assert.Equal(t, model.NewMeasurement("250", "g"), flour.Measurements[1])

	butter := report.Ingredients[1]
	assert.Equal(t, "Dairy & Eggs", butter.Category)
	require.Len(t, butter.Measurements, 2)
	assert.Equal(t, model.NewMeasurement("227", "g"), butter.Measurements[1])

	salt := report.Ingredients[2]
	assert.Len(t, salt.Measurements, 1, "salt has no density without a site convention")

	assert.Equal(t, 1, report.MetricStats.ConvertedOz)
	assert.Equal(t, 1, report.VolumeStats.Converted)
	assert.Equal(t, []string{"salt"}, report.VolumeStats.UnknownIngredients)

	assert.Equal(t, model.Summary{
		IngredientLines:  3,
		WithMeasurements: 3,
		WeightsAdded:     2,
		Coverage:         1,
	}, report.Summary)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recipes.WithLabelValues("json_ld")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IngredientLines))
}

func TestProcessURL_FetchError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	p := NewPipeline(testConfig())
	_, err := p.ProcessURL(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "fetch: unexpected status: 404"), err.Error())
}

func TestProcessHTML_NoRecipe(t *testing.T) {
	m := metrics.New()
	p := NewPipeline(testConfig(), WithMetrics(m))

	_, err := p.ProcessHTML("<html><body><p>Just a blog post.</p></body></html>", "https://example.com/post")
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrNoRecipe))
	assert.True(t, strings.HasPrefix(err.Error(), "extract: "))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionErrors.WithLabelValues("no_recipe")))
}

func TestProcessHTML_DomainOverrides(t *testing.T) {
	page := strings.Replace(recipePage, `"1 tsp salt"`, `"1 cup salt"`, 1)

	p := NewPipeline(testConfig())
	report, err := p.ProcessHTML(page, "https://www.smittenkitchen.com/2024/01/biscuits/")
	require.NoError(t, err)
	require.Len(t, report.Ingredients, 3)
	assert.Equal(t, model.NewMeasurement("137", "g"), report.Ingredients[2].Measurements[1])
	assert.False(t, report.FetchedAt.IsZero())
	assert.Equal(t, "Smittenkitchen.com", report.Recipe.SourceName)

	cfg := testConfig()
	cfg.Enrich.DomainOverrides = false
	report, err = NewPipeline(cfg).ProcessHTML(page, "https://www.smittenkitchen.com/2024/01/biscuits/")
	require.NoError(t, err)
	assert.Len(t, report.Ingredients[2].Measurements, 1)
}

func TestProcessHTML_EnrichmentDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enrich = model.EnrichConfig{}

	report, err := NewPipeline(cfg).ProcessHTML(recipePage, "https://example.com/biscuits")
	require.NoError(t, err)

	assert.Equal(t, "flour", report.Ingredients[0].Item)
	for _, ing := range report.Ingredients {
		assert.Len(t, ing.Measurements, 1, ing.Item)
	}
	assert.Zero(t, report.Summary.WeightsAdded)
}

func TestProcessHTML_Sections(t *testing.T) {
	page := strings.Replace(recipePage,
		`["2 cups flour", "8 oz butter", "1 tsp salt"]`,
		`["For the dough:", "2 cups flour", "8 oz butter", "For the glaze:", "1 cup powdered sugar", "pinch of nutmeg"]`, 1)

	report, err := NewPipeline(testConfig()).ProcessHTML(page, "https://example.com/biscuits")
	require.NoError(t, err)

	require.Len(t, report.Ingredients, 4)
	assert.Equal(t, []string{"For the Dough", "For the Glaze"}, report.Summary.Sections)
	assert.Equal(t, "For the Glaze", report.Ingredients[3].SectionString())
	assert.Equal(t, 4, report.Summary.IngredientLines)
}

func TestRenderReport(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline(testConfig(), WithOutput(&out))

	report, err := p.ProcessHTML(recipePage, "https://example.com/biscuits")
	require.NoError(t, err)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, p.RenderReport(report, jsonPath, mdPath, true))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Butter Biscuits"`)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Butter Biscuits")

	assert.Contains(t, out.String(), "✓ Wrote JSON: "+jsonPath)
	assert.Contains(t, out.String(), "✓ Wrote Markdown: "+mdPath)
	assert.Contains(t, out.String(), "Butter Biscuits (json_ld)")
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, model.Summary{}, summarize(nil, enrich.Stats{}))
}
