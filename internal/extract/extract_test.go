package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/larder/internal/model"
)

func ldPage(json string) string {
	return `<html><head><script type="application/ld+json">` + json + `</script></head><body></body></html>`
}

func TestExtract_JSONLD(t *testing.T) {
	html := ldPage(`{"@type":"Recipe","name":"Test Recipe","recipeYield":"4 servings","recipeIngredient":["1 cup flour"],"recipeInstructions":"Mix and bake."}`)

	out, err := ExtractWithStats(html, "https://www.example.com/test")
	require.NoError(t, err)

	assert.Equal(t, model.MethodJSONLD, out.Method)
	assert.Equal(t, "Test Recipe", out.Recipe.Title)
	assert.Equal(t, "4 servings", out.Recipe.Servings)
	assert.Equal(t, "1 cup flour", out.Recipe.Ingredients)
	assert.Equal(t, "Mix and bake.", out.Recipe.Instructions)
	assert.Equal(t, "Example.com", out.Recipe.SourceName)
	assert.Equal(t, "https://www.example.com/test", out.Recipe.SourceURL)
	assert.Empty(t, out.Recipe.ImageURLs)
	assert.Equal(t, []model.ExtractionAttempt{{Method: model.MethodJSONLD, Success: true}}, out.Attempts)

	r, err := Extract(html, "")
	require.NoError(t, err)
	assert.Equal(t, "Test Recipe", r.Title)
}

func TestExtract_JSONLDGraph(t *testing.T) {
	html := ldPage(`{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "Not a recipe"},
			{
				"@type": ["Recipe", "NewsArticle"],
				"name": "  Graph Stew ",
				"description": "Hearty.",
				"image": [{"url": "https://cdn.example.com/a.jpg"}, "https://cdn.example.com/b.jpg"],
				"recipeYield": ["6", "6 servings"],
				"prepTime": "PT15M",
				"cookTime": "PT1H",
				"totalTime": "PT1H15M",
				"recipeCategory": ["Dinner", "Stew"],
				"aggregateRating": {"@type": "AggregateRating", "ratingValue": "4.5"},
				"nutrition": {"@type": "NutritionInformation", "calories": "320 kcal"},
				"recipeIngredient": [" 2 lb beef ", "", "1 onion"],
				"recipeInstructions": [
					{"@type": "HowToStep", "text": "Brown the beef."},
					{"@type": "HowToSection", "name": "Finish", "itemListElement": [
						{"@type": "HowToStep", "text": "Add onion."},
						{"@type": "HowToStep", "text": "Simmer."}
					]},
					"Serve."
				]
			}
		]
	}`)

	r, err := Extract(html, "https://cooking.example.org/stew")
	require.NoError(t, err)

	assert.Equal(t, "Graph Stew", r.Title)
	assert.Equal(t, "Hearty.", r.Description)
	assert.Equal(t, "2 lb beef\n1 onion", r.Ingredients)
	assert.Equal(t, "Brown the beef.\n\nAdd onion.\nSimmer.\n\nServe.", r.Instructions)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, r.ImageURLs)
	assert.Equal(t, "6", r.Servings)
	assert.Equal(t, "PT15M", r.PrepTime)
	assert.Equal(t, "PT1H", r.CookTime)
	assert.Equal(t, "PT1H15M", r.TotalTime)
	assert.Equal(t, []string{"Dinner", "Stew"}, r.Categories)
	assert.Equal(t, map[string]string{"calories": "320 kcal"}, r.NutritionalInfo)
	require.NotNil(t, r.Rating)
	assert.InDelta(t, 4.5, *r.Rating, 1e-9)
	assert.Equal(t, "Cooking.example.org", r.SourceName)
}

func TestExtract_JSONLDSkipsBrokenBlocks(t *testing.T) {
	html := `<script type="application/ld+json">{not json</script>
<script type='application/ld+json'>[{"@type":"Organization"},{"@type":"Recipe","name":"Second","recipeIngredient":["salt"],"recipeInstructions":["Season."],"recipeYield":4}]</script>`

	r, err := Extract(html, "")
	require.NoError(t, err)
	assert.Equal(t, "Second", r.Title)
	assert.Equal(t, "Season.", r.Instructions)
	assert.Equal(t, "4", r.Servings)
}

func TestExtract_JSONLDSanitizesStrings(t *testing.T) {
	html := ldPage("{\"@type\":\"Recipe\",\"name\":\"So\x01up\",\"recipeIngredient\":[\"1 cup\twater\"],\n\"recipeInstructions\":\"Boil.\nServe.\"}")

	r, err := Extract(html, "")
	require.NoError(t, err)
	assert.Equal(t, "Soup", r.Title)
	assert.Equal(t, "1 cup\twater", r.Ingredients)
	assert.Equal(t, "Boil.\nServe.", r.Instructions)
}

func TestExtract_JSONLDSlowPath(t *testing.T) {
	// The attribute is only recognizable once entities are decoded.
	html := `<html><head><script type="application&#x2F;ld+json">{"@type":"Recipe","name":"Slow","recipeIngredient":["1 egg"],"recipeInstructions":"Fry."}</script></head></html>`

	out, err := ExtractWithStats(html, "")
	require.NoError(t, err)
	assert.Equal(t, model.MethodJSONLD, out.Method)
	assert.Equal(t, "Slow", out.Recipe.Title)
}

func TestExtract_JSONLDOGImageFallback(t *testing.T) {
	html := `<html><head>
<meta content="https://example.com/og.jpg" property="og:image">
<script type="application/ld+json">{"@type":"Recipe","name":"Pie","recipeIngredient":["1 crust"],"recipeInstructions":"Bake."}</script>
</head></html>`

	r, err := Extract(html, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/og.jpg"}, r.ImageURLs)
}

func TestExtract_MicrodataOGImage(t *testing.T) {
	html := `<html><head><meta property="og:image" content="https://example.com/og.jpg"></head>
<body><div itemscope itemtype="http://schema.org/Recipe">
<h1 itemprop="name">Micro Cake</h1>
<meta itemprop="recipeYield" content="8 slices">
<ul>
<li itemprop="recipeIngredient">2 cups   flour</li>
<li itemprop="recipeIngredient">1 cup sugar</li>
</ul>
<div itemprop="recipeInstructions">Bake it.</div>
</div></body></html>`

	out, err := ExtractWithStats(html, "https://bakes.example.com/cake")
	require.NoError(t, err)

	assert.Equal(t, model.MethodMicrodata, out.Method)
	assert.Equal(t, "Micro Cake", out.Recipe.Title)
	assert.Equal(t, "2 cups flour\n1 cup sugar", out.Recipe.Ingredients)
	assert.Equal(t, "Bake it.", out.Recipe.Instructions)
	assert.Equal(t, "8 slices", out.Recipe.Servings)
	assert.Equal(t, []string{"https://example.com/og.jpg"}, out.Recipe.ImageURLs)

	require.Len(t, out.Attempts, 2)
	assert.Equal(t, model.ExtractionAttempt{Method: model.MethodJSONLD, Error: ErrNoRecipe.Error()}, out.Attempts[0])
	assert.Equal(t, model.ExtractionAttempt{Method: model.MethodMicrodata, Success: true}, out.Attempts[1])
}

func TestExtract_MicrodataSteps(t *testing.T) {
	html := `<div itemscope itemtype="https://schema.org/Recipe">
<span itemprop="name">Pancakes</span>
<img itemprop="image" src="https://example.com/p.jpg">
<span itemprop="ingredients">1 egg</span>
<span itemprop="ratingValue">4</span>
<ol itemprop="recipeInstructions">
<li itemprop="itemListElement" itemscope itemtype="http://schema.org/HowToStep"><span itemprop="text">Mix.</span></li>
<li itemscope itemtype="http://schema.org/HowToStep"><span itemprop="text">Cook.</span></li>
</ol>
</div>`

	r, err := Extract(html, "")
	require.NoError(t, err)
	assert.Equal(t, "Mix.\n\nCook.", r.Instructions)
	assert.Equal(t, []string{"https://example.com/p.jpg"}, r.ImageURLs)
	require.NotNil(t, r.Rating)
	assert.InDelta(t, 4.0, *r.Rating, 1e-9)
}

func TestExtract_MicrodataClassFallback(t *testing.T) {
	html := `<div itemscope itemtype="http://schema.org/Recipe">
<h2 itemprop="name">Fritters</h2>
<span itemprop="recipeIngredient">1 zucchini</span>
</div>
<div class="recipe-directions"><p>Whisk.</p><p>Fry.</p></div>`

	r, err := Extract(html, "")
	require.NoError(t, err)
	assert.Equal(t, "Whisk.\n\nFry.", r.Instructions)
}

func TestExtract_NoRecipe(t *testing.T) {
	pages := []string{
		"",
		"<html><body><p>Just a blog post.</p></body></html>",
		ldPage(`{"@type":"Article","name":"News"}`),
		`<div itemscope itemtype="http://schema.org/Article"><span itemprop="name">x</span></div>`,
	}
	for _, html := range pages {
		r, err := Extract(html, "")
		assert.Nil(t, r)
		assert.Same(t, ErrNoRecipe, err)

		_, err = ExtractWithStats(html, "")
		var fe *FallbackError
		require.ErrorAs(t, err, &fe)
		assert.ErrorIs(t, err, ErrNoRecipe)
		assert.Len(t, fe.Attempts, 2)
	}
}

func TestExtract_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		missing string
		invalid string
	}{
		{
			name:    "missing name",
			json:    `{"@type":"Recipe","recipeIngredient":["a"],"recipeInstructions":"b"}`,
			missing: "name",
		},
		{
			name:    "missing ingredients",
			json:    `{"@type":"Recipe","name":"X","recipeInstructions":"b"}`,
			missing: "recipeIngredient",
		},
		{
			name:    "empty ingredients",
			json:    `{"@type":"Recipe","name":"X","recipeIngredient":["", "  "],"recipeInstructions":"b"}`,
			missing: "recipeIngredient (empty)",
		},
		{
			name:    "ingredients not an array",
			json:    `{"@type":"Recipe","name":"X","recipeIngredient":"1 cup flour","recipeInstructions":"b"}`,
			invalid: "recipeIngredient is not an array",
		},
		{
			name:    "missing instructions",
			json:    `{"@type":"Recipe","name":"X","recipeIngredient":["a"]}`,
			missing: "recipeInstructions",
		},
		{
			name:    "empty instructions",
			json:    `{"@type":"Recipe","name":"X","recipeIngredient":["a"],"recipeInstructions":[{"@type":"HowToStep"}]}`,
			missing: "recipeInstructions (empty)",
		},
		{
			name:    "instructions wrong shape",
			json:    `{"@type":"Recipe","name":"X","recipeIngredient":["a"],"recipeInstructions":42}`,
			invalid: "recipeInstructions is not a string or array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(ldPage(tt.json), "")
			require.Error(t, err)
			assert.NotSame(t, ErrNoRecipe, err, "json-ld failure is surfaced")

			if tt.missing != "" {
				var mf *MissingFieldError
				require.ErrorAs(t, err, &mf)
				assert.Equal(t, tt.missing, mf.Field)
			}
			if tt.invalid != "" {
				var ij *InvalidJSONError
				require.ErrorAs(t, err, &ij)
				assert.Equal(t, tt.invalid, ij.Reason)
			}

			var fe *FallbackError
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Error(), "json-ld:")
		})
	}
}

func TestExtract_MicrodataErrorIsPrimary(t *testing.T) {
	html := `<div itemscope itemtype="http://schema.org/Recipe"><span itemprop="name">Half</span></div>`

	_, err := Extract(html, "")
	var fe *FallbackError
	require.ErrorAs(t, err, &fe)

	var mf *MissingFieldError
	require.True(t, errors.As(fe.Err, &mf))
	assert.Equal(t, "recipeIngredient (empty)", mf.Field)
	assert.Same(t, ErrNoRecipe, fe.JSONLDErr)
	assert.Equal(t, "missing field: recipeIngredient (empty) (json-ld: no recipe found)", fe.Error())
}

type stubStrategy struct {
	method model.ExtractionMethod
	recipe *model.RawRecipe
	err    error
	calls  int
}

func (s *stubStrategy) Method() model.ExtractionMethod { return s.method }

func (s *stubStrategy) Extract(*Page) (*model.RawRecipe, error) {
	s.calls++
	return s.recipe, s.err
}

func TestExtractor_StopsAtFirstSuccess(t *testing.T) {
	first := &stubStrategy{method: model.MethodPaprika, recipe: &model.RawRecipe{Title: "From export"}}
	second := &stubStrategy{method: model.MethodJSONLD, err: ErrNoRecipe}

	out, err := NewWithStrategies(nil, first, second).ExtractWithStats("", "")
	require.NoError(t, err)
	assert.Equal(t, model.MethodPaprika, out.Method)
	assert.Equal(t, "From export", out.Recipe.Title)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestExtractor_NoStrategies(t *testing.T) {
	_, err := NewWithStrategies(nil).Extract("<p>hi</p>", "")
	assert.Same(t, ErrNoRecipe, err)
}

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace between tokens kept", "{\n\t\"a\": 1\n}", "{\n\t\"a\": 1\n}"},
		{"newline in string escaped", "{\"a\":\"x\ny\"}", `{"a":"x\ny"}`},
		{"escaped quote does not end string", "{\"a\":\"say \\\"hi\\\"\n\"}", `{"a":"say \"hi\"\n"}`},
		{"control dropped", "{\"a\":\"x\x07y\"}", `{"a":"xy"}`},
		{"multibyte kept", "{\"a\":\"crème\tbrûlée\"}", `{"a":"crème\tbrûlée"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeJSON(tt.in))
		})
	}
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "Seriouseats.com", SourceName("https://www.seriouseats.com/recipe"))
	assert.Equal(t, "Nytimes.com", SourceName("http://nytimes.com"))
	assert.Equal(t, "", SourceName(""))
	assert.Equal(t, "", SourceName("::not a url"))
}
