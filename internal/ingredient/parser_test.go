package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/larder/internal/model"
)

func meas(amount, unit string) model.Measurement {
	return model.NewMeasurement(amount, unit)
}

func TestParse_Empty(t *testing.T) {
	got := Parse("   ")

	assert.Equal(t, "", got.Item)
	assert.NotNil(t, got.Measurements)
	assert.Empty(t, got.Measurements)
	assert.Nil(t, got.Note)
	require.NotNil(t, got.Raw)
	assert.Equal(t, "", *got.Raw)
}

func TestParse_Lines(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		item  string
		meas  []model.Measurement
		note  string
	}{
		{
			name: "simple",
			raw:  "2 cups flour",
			item: "flour",
			meas: []model.Measurement{meas("2", "cups")},
		},
		{
			name: "parenthetical metric",
			raw:  "1 stick (113g) butter",
			item: "butter",
			meas: []model.Measurement{meas("1", "stick"), meas("113", "g")},
		},
		{
			name: "each applies to every alternate",
			raw:  "2 medium onions (8 ounces; 227 g each), finely chopped",
			item: "onions",
			meas: []model.Measurement{meas("2", "medium"), meas("8", "ounces each"), meas("227", "g each")},
			note: "finely chopped",
		},
		{
			name: "longest unit wins",
			raw:  "2 tablespoons butter",
			item: "butter",
			meas: []model.Measurement{meas("2", "tablespoons")},
		},
		{
			name: "mixed number",
			raw:  "1 1/2 cups sugar",
			item: "sugar",
			meas: []model.Measurement{meas("1 1/2", "cups")},
		},
		{
			name: "fraction glyph after digit",
			raw:  "1½ cups milk",
			item: "milk",
			meas: []model.Measurement{meas("1 1/2", "cups")},
		},
		{
			name: "bare fraction glyph",
			raw:  "½ cup sugar",
			item: "sugar",
			meas: []model.Measurement{meas("1/2", "cup")},
		},
		{
			name: "and fraction",
			raw:  "2 and 1/2 cups flour",
			item: "flour",
			meas: []model.Measurement{meas("2 1/2", "cups")},
		},
		{
			name: "double encoded ampersand fraction",
			raw:  "1 &amp;amp; 1/2 cups milk",
			item: "milk",
			meas: []model.Measurement{meas("1 1/2", "cups")},
		},
		{
			name: "to range",
			raw:  "6 to 8 ounces chocolate",
			item: "chocolate",
			meas: []model.Measurement{meas("6 to 8", "ounces")},
		},
		{
			name: "or range",
			raw:  "3 or 4 drops Tabasco",
			item: "Tabasco",
			meas: []model.Measurement{meas("3 or 4", "drops")},
		},
		{
			name: "hyphen range",
			raw:  "1-2 tablespoons honey",
			item: "honey",
			meas: []model.Measurement{meas("1-2", "tablespoons")},
		},
		{
			name: "spaced hyphen range",
			raw:  "1 - 2 tablespoons honey",
			item: "honey",
			meas: []model.Measurement{meas("1-2", "tablespoons")},
		},
		{
			name: "hyphenated mixed number",
			raw:  "1-1/2 cups flour",
			item: "flour",
			meas: []model.Measurement{meas("1 1/2", "cups")},
		},
		{
			name: "mixed number range",
			raw:  "2 1/2 - 3 cups broth",
			item: "broth",
			meas: []model.Measurement{meas("2 1/2-3", "cups")},
		},
		{
			name: "modifier before amount",
			raw:  "scant 1 teaspoon salt",
			item: "salt",
			meas: []model.Measurement{meas("1", "scant teaspoon")},
		},
		{
			name: "modifier before unit",
			raw:  "2 heaping tablespoons cocoa",
			item: "cocoa",
			meas: []model.Measurement{meas("2", "heaping tablespoons")},
		},
		{
			name: "can with parenthetical size",
			raw:  "1 (14 ounce) can tomatoes",
			item: "tomatoes",
			meas: []model.Measurement{meas("1", "can"), meas("14", "ounce")},
		},
		{
			name: "hyphenated compound unit",
			raw:  "2 14-ounce cans diced tomatoes",
			item: "diced tomatoes",
			meas: []model.Measurement{meas("2", "14-ounce cans")},
		},
		{
			name: "spaced compound unit",
			raw:  "1 28 oz. can crushed tomatoes",
			item: "crushed tomatoes",
			meas: []model.Measurement{meas("1", "28 oz. can")},
		},
		{
			name: "or alternative needs amount and unit",
			raw:  "vanilla or chocolate ice cream",
			item: "vanilla or chocolate ice cream",
			meas: []model.Measurement{},
		},
		{
			name: "or alternative with modifier",
			raw:  "1 pound or 3 heaping cups frozen pineapple",
			item: "frozen pineapple",
			meas: []model.Measurement{meas("1", "pound"), meas("3", "heaping cups")},
		},
		{
			name: "slash chain",
			raw:  "3/4 cup / 4 oz / 115g toasted sunflower seeds",
			item: "toasted sunflower seeds",
			meas: []model.Measurement{meas("3/4", "cup"), meas("4", "oz"), meas("115", "g")},
		},
		{
			name: "slash metric alternative",
			raw:  "3.5 ounces / 100g celery root",
			item: "celery root",
			meas: []model.Measurement{meas("3.5", "ounces"), meas("100", "g")},
		},
		{
			name: "attached metric",
			raw:  "1/3 cup 65g granulated sugar",
			item: "granulated sugar",
			meas: []model.Measurement{meas("1/3", "cup"), meas("65", "g")},
		},
		{
			name: "attached metric with slash alternative",
			raw:  "1 cup 226g/8 oz. butter",
			item: "butter",
			meas: []model.Measurement{meas("1", "cup"), meas("226", "g"), meas("8", "oz")},
		},
		{
			name: "named ingredient or alternative",
			raw:  "fresh dill or 1 teaspoon dried dill",
			item: "fresh dill",
			meas: []model.Measurement{},
			note: "or 1 teaspoon dried dill",
		},
		{
			name: "plus clause",
			raw:  "1 cup flour, plus 2 tablespoons",
			item: "flour",
			meas: []model.Measurement{meas("1", "cup")},
			note: "plus 2 tablespoons",
		},
		{
			name: "optional prefix",
			raw:  "Optional: 1/4 cup chopped parsley",
			item: "chopped parsley",
			meas: []model.Measurement{meas("1/4", "cup")},
			note: "optional",
		},
		{
			name: "leading quantity parenthetical",
			raw:  "(half stick) butter",
			item: "butter",
			meas: []model.Measurement{meas("1/2", "stick")},
		},
		{
			name: "trailing prep note",
			raw:  "2 cloves garlic, minced",
			item: "garlic",
			meas: []model.Measurement{meas("2", "cloves")},
			note: "minced",
		},
		{
			name: "of after unit",
			raw:  "4 cloves of garlic",
			item: "garlic",
			meas: []model.Measurement{meas("4", "cloves")},
		},
		{
			name: "glued unit word",
			raw:  "450grams flour",
			item: "flour",
			meas: []model.Measurement{meas("450", "grams")},
		},
		{
			name: "number word",
			raw:  "two eggs",
			item: "eggs",
			meas: []model.Measurement{meas("2", "")},
		},
		{
			name: "no measurement",
			raw:  "Salt and pepper to taste",
			item: "Salt and pepper to taste",
			meas: []model.Measurement{},
		},
		{
			name: "list marker",
			raw:  "- 2 cups flour",
			item: "flour",
			meas: []model.Measurement{meas("2", "cups")},
		},
		{
			name: "sticks alternate and room temperature note",
			raw:  "1 cup (2 sticks) unsalted butter, at room temperature",
			item: "unsalted butter",
			meas: []model.Measurement{meas("1", "cup"), meas("2", "sticks")},
			note: "at room temperature",
		},
		{
			name: "two parentheticals",
			raw:  "8 ounces (227 g) cream cheese (softened)",
			item: "cream cheese",
			meas: []model.Measurement{meas("8", "ounces"), meas("227", "g")},
			note: "softened",
		},
		{
			name: "double parens with qualifier",
			raw:  "((about 4 cloves)) garlic",
			item: "garlic",
			meas: []model.Measurement{meas("4", "cloves")},
		},
		{
			name: "abbreviation with period",
			raw:  "1 c. sugar",
			item: "sugar",
			meas: []model.Measurement{meas("1", "c")},
		},
		{
			name: "multibyte item",
			raw:  "2 cups crème fraîche",
			item: "crème fraîche",
			meas: []model.Measurement{meas("2", "cups")},
		},
		{
			name: "measurement only keeps raw as item",
			raw:  "2 cups",
			item: "2 cups",
			meas: []model.Measurement{meas("2", "cups")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)

			assert.Equal(t, tt.item, got.Item)
			assert.Equal(t, tt.meas, got.Measurements)
			assert.Equal(t, tt.note, got.NoteString())
			require.NotNil(t, got.Raw)
			assert.Equal(t, tt.raw, *got.Raw)
		})
	}
}

func TestParse_Pure(t *testing.T) {
	lines := []string{
		"2 medium onions (8 ounces; 227 g each), finely chopped",
		"3/4 cup / 4 oz / 115g toasted sunflower seeds",
		"fresh dill or 1 teaspoon dried dill",
	}
	for _, line := range lines {
		assert.Equal(t, Parse(line), Parse(line), line)
	}
}

func TestParse_ItemNeverEmpty(t *testing.T) {
	for _, raw := range []string{"()", "2", "cups", ",", "(softened)", "1 (8 ounce)"} {
		got := Parse(raw)
		assert.NotEmpty(t, got.Item, raw)
	}
}

func TestParse_RawIsTrimmedInput(t *testing.T) {
	got := Parse("  1 &frac12; cups milk \t")
	require.NotNil(t, got.Raw)
	assert.Equal(t, "1 &frac12; cups milk", *got.Raw)
	assert.Equal(t, []model.Measurement{meas("1 1/2", "cups")}, got.Measurements)
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		in, amount, rest string
	}{
		{"1 1/2 cups", "1 1/2", "cups"},
		{"2 1/2 - 4 1/2 cups", "2 1/2-4 1/2", "cups"},
		{"6-8 oz", "6-8", "oz"},
		{"6-8", "6-8", ""},
		{"1.5 lb", "1.5", "lb"},
		{". cup", "", ". cup"},
		{"cups", "", "cups"},
		{"-2 cups", "", "-2 cups"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			amount, rest := extractAmount(tt.in)
			assert.Equal(t, tt.amount, amount)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestNormalizeUnicode(t *testing.T) {
	assert.Equal(t, "1 1/2 cups", normalizeUnicode("1½ cups"))
	assert.Equal(t, "1/4 tsp", normalizeUnicode("¼ tsp"))
	assert.Equal(t, "2-3 cups", normalizeUnicode("2–3 cups"))
	assert.Equal(t, "1 cup", normalizeUnicode("1 cup"))
}

func TestNormalizeWordNumbers(t *testing.T) {
	assert.Equal(t, "1/2 stick", normalizeWordNumbers("half stick"))
	assert.Equal(t, "3 eggs", normalizeWordNumbers("Three eggs"))
	assert.Equal(t, "someone", normalizeWordNumbers("someone"))
	assert.Equal(t, "tender greens", normalizeWordNumbers("tender greens"))
}

func TestStripListMarker(t *testing.T) {
	assert.Equal(t, "2 cups", stripListMarker("- 2 cups"))
	assert.Equal(t, "(1 can)", stripListMarker("* (1 can)"))
	assert.Equal(t, "2 eggs", stripListMarker("+2 eggs"))
	assert.Equal(t, "-salt", stripListMarker("-salt"))
}
