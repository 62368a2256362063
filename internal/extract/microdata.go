package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/larder/internal/model"
)

const (
	recipeContainerSelector = `[itemtype="http://schema.org/Recipe"], [itemtype="https://schema.org/Recipe"]`
	ingredientSelector      = `[itemprop="recipeIngredient"], [itemprop="ingredients"]`
	stepSelector            = `[itemprop="recipeInstructions"], [itemprop="instructions"], [itemtype*="HowToStep"]`
	instructionClasses      = `.e-instructions, .instructions, .recipe-instructions, .jetpack-recipe-directions, .recipe-directions`
)

// Microdata reads schema.org Recipe markup expressed with itemtype/itemprop
// attributes. Instructions fall back to well-known plugin class names when
// no itemprop is present.
type Microdata struct{}

// NewMicrodata creates the microdata strategy
func NewMicrodata() *Microdata { return &Microdata{} }

func (m *Microdata) Method() model.ExtractionMethod { return model.MethodMicrodata }

func (m *Microdata) Extract(p *Page) (*model.RawRecipe, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, ErrNoRecipe
	}
	root := doc.Find(recipeContainerSelector).First()
	if root.Length() == 0 {
		return nil, ErrNoRecipe
	}

	name := microdataText(root.Find(`[itemprop="name"]`).First())
	if name == "" {
		return nil, missingField("name")
	}

	var lines []string
	root.Find(ingredientSelector).Each(func(_ int, s *goquery.Selection) {
		if t := microdataText(s); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return nil, missingField("recipeIngredient (empty)")
	}

	instructions := microdataInstructions(root)
	if instructions == "" {
		instructions = classInstructions(doc.Selection)
	}
	if instructions == "" {
		return nil, missingField("recipeInstructions (empty)")
	}

	images := microdataImages(root)
	if len(images) == 0 {
		images = ogImages(p.HTML)
	}
	if images == nil {
		images = []string{}
	}

	r := &model.RawRecipe{
		Title:        name,
		Description:  microdataText(root.Find(`[itemprop="description"]`).First()),
		Ingredients:  strings.Join(lines, "\n"),
		Instructions: instructions,
		ImageURLs:    images,
		SourceURL:    p.SourceURL,
		SourceName:   SourceName(p.SourceURL),
		Servings:     microdataText(root.Find(`[itemprop="recipeYield"]`).First()),
		PrepTime:     microdataText(root.Find(`[itemprop="prepTime"]`).First()),
		CookTime:     microdataText(root.Find(`[itemprop="cookTime"]`).First()),
		TotalTime:    microdataText(root.Find(`[itemprop="totalTime"]`).First()),
		Rating:       microdataRating(root),
	}
	root.Find(`[itemprop="recipeCategory"]`).Each(func(_ int, s *goquery.Selection) {
		if t := microdataText(s); t != "" {
			r.Categories = append(r.Categories, t)
		}
	})
	return r, nil
}

// microdataText prefers a content attribute (used on <meta> and time
// elements) over the element's visible text.
func microdataText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
		return strings.TrimSpace(c)
	}
	if d, ok := s.Attr("datetime"); ok && strings.TrimSpace(d) != "" {
		return strings.TrimSpace(d)
	}
	return strings.Join(strings.Fields(s.Text()), " ")
}

// microdataInstructions collects the innermost step elements. A matched
// element that wraps other matched steps is a container, not a step.
func microdataInstructions(root *goquery.Selection) string {
	var steps []string
	root.Find(stepSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(stepSelector).Length() > 0 {
			return
		}
		var t string
		if text := s.Find(`[itemprop="text"]`); text.Length() > 0 {
			t = microdataText(text.First())
		} else {
			t = microdataText(s)
		}
		if t != "" {
			steps = append(steps, t)
		}
	})
	return strings.Join(steps, "\n\n")
}

func classInstructions(doc *goquery.Selection) string {
	container := doc.Find(instructionClasses).First()
	if container.Length() == 0 {
		return ""
	}
	var steps []string
	container.Find("li, p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			steps = append(steps, t)
		}
	})
	if len(steps) == 0 {
		if t := strings.Join(strings.Fields(container.Text()), " "); t != "" {
			steps = append(steps, t)
		}
	}
	return strings.Join(steps, "\n\n")
}

func microdataImages(root *goquery.Selection) []string {
	var out []string
	root.Find(`[itemprop="image"]`).Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"src", "href", "content"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				out = append(out, strings.TrimSpace(v))
				return
			}
		}
	})
	return out
}

func microdataRating(root *goquery.Selection) *float64 {
	t := microdataText(root.Find(`[itemprop="ratingValue"]`).First())
	if t == "" {
		return nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &f
}
