package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"

	"github.com/ppiankov/larder/internal/model"
)

var jsonLDScriptRe = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*["']?application/ld\+json["']?[^>]*>(.*?)</script>`)

// JSONLD reads schema.org Recipe objects from ld+json script blocks.
// A regex scan of the raw text runs first; when it finds nothing, script
// contents are re-read from the parsed DOM.
type JSONLD struct{}

// NewJSONLD creates the JSON-LD strategy
func NewJSONLD() *JSONLD { return &JSONLD{} }

func (j *JSONLD) Method() model.ExtractionMethod { return model.MethodJSONLD }

func (j *JSONLD) Extract(p *Page) (*model.RawRecipe, error) {
	var blocks []string
	for _, m := range jsonLDScriptRe.FindAllStringSubmatch(p.HTML, -1) {
		blocks = append(blocks, m[1])
	}
	if obj := recipeFromBlocks(blocks); obj != nil {
		return recipeFromJSONLD(obj, p)
	}

	doc, err := p.Document()
	if err != nil {
		return nil, ErrNoRecipe
	}
	blocks = blocks[:0]
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	if obj := recipeFromBlocks(blocks); obj != nil {
		return recipeFromJSONLD(obj, p)
	}
	return nil, ErrNoRecipe
}

// recipeFromBlocks returns the first Recipe object across blocks.
// Blocks that fail to parse are skipped.
func recipeFromBlocks(blocks []string) map[string]interface{} {
	for _, block := range blocks {
		var v interface{}
		if err := sonic.UnmarshalString(sanitizeJSON(block), &v); err != nil {
			continue
		}
		if obj := findRecipe(v); obj != nil {
			return obj
		}
	}
	return nil
}

// findRecipe walks a decoded JSON value depth-first. An object is a recipe
// when its @type is "Recipe" or a list containing it. @graph is searched
// before other keys; remaining keys are visited in sorted order so the
// result does not depend on map iteration.
func findRecipe(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			if obj := findRecipe(graph); obj != nil {
				return obj
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			if k != "@graph" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if obj := findRecipe(t[k]); obj != nil {
				return obj
			}
		}
	case []interface{}:
		for _, item := range t {
			if obj := findRecipe(item); obj != nil {
				return obj
			}
		}
	}
	return nil
}

func isRecipeType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// sanitizeJSON makes publisher JSON parseable: raw newlines, carriage
// returns and tabs inside string literals become escapes, and other control
// characters are dropped. Whitespace between tokens is kept.
func sanitizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for _, r := range s {
		if escaped {
			escaped = false
			b.WriteRune(r)
			continue
		}
		switch {
		case inString && r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case inString && r == '\n':
			b.WriteString(`\n`)
		case inString && r == '\r':
			b.WriteString(`\r`)
		case inString && r == '\t':
			b.WriteString(`\t`)
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
