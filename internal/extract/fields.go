package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/larder/internal/model"
)

var (
	ogImagePropFirstRe    = regexp.MustCompile(`(?i)<meta[^>]+property\s*=\s*["']og:image["'][^>]+content\s*=\s*["']([^"']+)["']`)
	ogImageContentFirstRe = regexp.MustCompile(`(?i)<meta[^>]+content\s*=\s*["']([^"']+)["'][^>]+property\s*=\s*["']og:image["']`)
)

// recipeFromJSONLD maps a schema.org Recipe object onto a RawRecipe
func recipeFromJSONLD(obj map[string]interface{}, p *Page) (*model.RawRecipe, error) {
	name := strings.TrimSpace(stringValue(obj["name"]))
	if name == "" {
		return nil, missingField("name")
	}

	ingredients, err := jsonLDIngredients(obj)
	if err != nil {
		return nil, err
	}
	instructions, err := jsonLDInstructions(obj["recipeInstructions"])
	if err != nil {
		return nil, err
	}

	images := imageURLs(obj["image"])
	if len(images) == 0 {
		images = ogImages(p.HTML)
	}
	if images == nil {
		images = []string{}
	}

	r := &model.RawRecipe{
		Title:           name,
		Description:     strings.TrimSpace(stringValue(obj["description"])),
		Ingredients:     ingredients,
		Instructions:    instructions,
		ImageURLs:       images,
		SourceURL:       p.SourceURL,
		SourceName:      SourceName(p.SourceURL),
		Servings:        yieldValue(obj["recipeYield"]),
		PrepTime:        stringValue(obj["prepTime"]),
		CookTime:        stringValue(obj["cookTime"]),
		TotalTime:       stringValue(obj["totalTime"]),
		Rating:          ratingValue(obj["aggregateRating"]),
		NutritionalInfo: nutrition(obj["nutrition"]),
		Categories:      stringList(obj["recipeCategory"]),
	}
	return r, nil
}

func jsonLDIngredients(obj map[string]interface{}) (string, error) {
	v, ok := obj["recipeIngredient"]
	if !ok {
		v, ok = obj["ingredients"]
	}
	if !ok || v == nil {
		return "", missingField("recipeIngredient")
	}
	arr, ok := v.([]interface{})
	if !ok {
		return "", invalidJSON("recipeIngredient is not an array")
	}

	lines := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := strings.TrimSpace(stringValue(item)); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return "", missingField("recipeIngredient (empty)")
	}
	return strings.Join(lines, "\n"), nil
}

// jsonLDInstructions flattens recipeInstructions: a plain string, or a list
// of strings, HowToStep objects, and HowToSection objects whose
// itemListElement steps are joined with single newlines. Top-level entries
// are separated by blank lines.
func jsonLDInstructions(v interface{}) (string, error) {
	if v == nil {
		return "", missingField("recipeInstructions")
	}

	var out string
	switch t := v.(type) {
	case string:
		out = strings.TrimSpace(t)
	case []interface{}:
		var steps []string
		for _, item := range t {
			if s := instructionStep(item); s != "" {
				steps = append(steps, s)
			}
		}
		out = strings.Join(steps, "\n\n")
	default:
		return "", invalidJSON("recipeInstructions is not a string or array")
	}

	if out == "" {
		return "", missingField("recipeInstructions (empty)")
	}
	return out, nil
}

func instructionStep(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		if text := strings.TrimSpace(stringValue(t["text"])); text != "" {
			return text
		}
		if list, ok := t["itemListElement"].([]interface{}); ok {
			var parts []string
			for _, item := range list {
				if s := instructionStep(item); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, "\n")
		}
		return strings.TrimSpace(stringValue(t["name"]))
	}
	return ""
}

func imageURLs(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []interface{}:
		for _, item := range t {
			out = append(out, imageURLs(item)...)
		}
	case map[string]interface{}:
		if s := strings.TrimSpace(stringValue(t["url"])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ogImages returns the og:image URL from a meta tag in either attribute order
func ogImages(html string) []string {
	if m := ogImagePropFirstRe.FindStringSubmatch(html); m != nil {
		return []string{m[1]}
	}
	if m := ogImageContentFirstRe.FindStringSubmatch(html); m != nil {
		return []string{m[1]}
	}
	return nil
}

func yieldValue(v interface{}) string {
	if arr, ok := v.([]interface{}); ok {
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}
	return strings.TrimSpace(stringValue(v))
}

func ratingValue(v interface{}) *float64 {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	switch t := obj["ratingValue"].(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func nutrition(v interface{}) map[string]string {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for k, val := range obj {
		if strings.HasPrefix(k, "@") {
			continue
		}
		if s := strings.TrimSpace(stringValue(val)); s != "" {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringList(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range t {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// stringValue renders scalars as text; numbers print without trailing zeros
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
