package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/larder/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Classic Buttermilk Pancakes", "classic-buttermilk-pancakes"},
		{"  Mom's  \"Best\" Chili!!  ", "mom-s-best-chili"},
		{"Crème Brûlée", "crème-brûlée"},
		{"???", ""},
		{strings.Repeat("ab ", 40), strings.TrimRight(strings.Repeat("ab-", 27), "-")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}

func TestReportFilename(t *testing.T) {
	report := &model.RecipeReport{ID: "1a2b3c4d-5e6f", Recipe: model.RawRecipe{Title: "Pad Thai"}}
	assert.Equal(t, "pad-thai-1a2b3c4d", reportFilename(report))

	report.Recipe.Title = ""
	assert.Equal(t, "1a2b3c4d", reportFilename(report))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "ab", truncateRunes("abé", 3), "é would be split")
	assert.Equal(t, "short", truncateRunes("short", 10))
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("2 cups flour\n\n   \n1 egg\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2 cups flour", "1 egg"}, lines)
}

func TestIngredientTable(t *testing.T) {
	ings := []model.ParsedIngredient{{
		Item:         "butter",
		Measurements: []model.Measurement{model.NewMeasurement("1", "stick"), model.NewMeasurement("4", "oz")},
		Section:      model.StringPtr("Crust"),
	}}

	table := ingredientTable(ings)
	lines := strings.Split(strings.TrimSpace(table), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "| Section | Amount | Unit  | Item   | Note | Also |", lines[0])
	assert.Equal(t, "| Crust   | 1      | stick | butter |      | 4 oz |", lines[2])
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, 30*time.Second, v.GetDuration("http.timeout"))
	assert.True(t, v.GetBool("cache.enabled"))
	assert.Equal(t, 4, v.GetInt("concurrency.workers"))
	assert.Equal(t, "warn", v.GetString("logging.level"))

	var cfg model.Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Larder Configuration File"))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCategorizeCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"categorize", "peanut butter"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "| peanut butter | Condiments & Sauces |")
}
