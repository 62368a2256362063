// Package extract locates structured recipe data in HTML pages.
//
// Two strategies run in order: JSON-LD (a regex scan of the raw text with a
// DOM-based retry) and schema.org microdata. The first strategy to succeed
// wins; the others are recorded as attempts.
package extract

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ppiankov/larder/internal/logging"
	"github.com/ppiankov/larder/internal/model"
)

// Strategy extracts a recipe from a page using one encoding of the data
type Strategy interface {
	// Method identifies the strategy in attempts and reports
	Method() model.ExtractionMethod

	// Extract returns ErrNoRecipe when the page has no data in this encoding
	Extract(p *Page) (*model.RawRecipe, error)
}

// Page is one HTML document being extracted. The DOM is built on first use
// and shared by every strategy that needs it.
type Page struct {
	HTML      string
	SourceURL string

	doc    *goquery.Document
	docErr error
	parsed bool
}

// NewPage wraps raw HTML and the URL it came from
func NewPage(html, sourceURL string) *Page {
	return &Page{HTML: html, SourceURL: sourceURL}
}

// Document returns the parsed DOM
func (p *Page) Document() (*goquery.Document, error) {
	if !p.parsed {
		p.doc, p.docErr = goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
		p.parsed = true
	}
	return p.doc, p.docErr
}

// Extractor runs strategies in order until one succeeds
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New creates an extractor with the JSON-LD and microdata strategies
func New(logger *zap.Logger) *Extractor {
	return NewWithStrategies(logger, NewJSONLD(), NewMicrodata())
}

// NewWithStrategies creates an extractor with a custom strategy order
func NewWithStrategies(logger *zap.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{
		strategies: strategies,
		logger:     logging.OrNop(logger),
	}
}

var defaultExtractor = New(nil)

// Extract pulls a recipe from html using the default strategies
func Extract(html, sourceURL string) (*model.RawRecipe, error) {
	return defaultExtractor.Extract(html, sourceURL)
}

// ExtractWithStats is Extract that also reports which method succeeded
func ExtractWithStats(html, sourceURL string) (*model.ExtractionOutput, error) {
	return defaultExtractor.ExtractWithStats(html, sourceURL)
}

// Extract returns the first successful strategy's recipe.
// When no strategy finds any recipe data the bare ErrNoRecipe is returned.
func (e *Extractor) Extract(html, sourceURL string) (*model.RawRecipe, error) {
	out, err := e.ExtractWithStats(html, sourceURL)
	if err != nil {
		if allNoRecipe(err) {
			return nil, ErrNoRecipe
		}
		return nil, err
	}
	return &out.Recipe, nil
}

// ExtractWithStats runs every strategy until one succeeds, recording each attempt.
// If all fail the error is a *FallbackError carrying the attempts.
func (e *Extractor) ExtractWithStats(html, sourceURL string) (*model.ExtractionOutput, error) {
	page := NewPage(html, sourceURL)

	var (
		attempts  []model.ExtractionAttempt
		lastErr   error
		jsonLDErr error
	)

	for _, s := range e.strategies {
		recipe, err := s.Extract(page)
		if err == nil {
			attempts = append(attempts, model.ExtractionAttempt{Method: s.Method(), Success: true})
			e.logger.Debug("recipe extracted",
				zap.String("method", string(s.Method())),
				zap.String("url", sourceURL),
				zap.String("title", recipe.Title))
			return &model.ExtractionOutput{
				Method:   s.Method(),
				Recipe:   *recipe,
				Attempts: attempts,
			}, nil
		}

		attempts = append(attempts, model.ExtractionAttempt{Method: s.Method(), Error: err.Error()})
		e.logger.Debug("extraction strategy failed",
			zap.String("method", string(s.Method())),
			zap.String("url", sourceURL),
			zap.Error(err))

		if s.Method() == model.MethodJSONLD && jsonLDErr == nil {
			jsonLDErr = err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrNoRecipe
	}
	return nil, &FallbackError{Err: lastErr, JSONLDErr: jsonLDErr, Attempts: attempts}
}

func allNoRecipe(err error) bool {
	var fe *FallbackError
	if !errors.As(err, &fe) {
		return errors.Is(err, ErrNoRecipe)
	}
	if !errors.Is(fe.Err, ErrNoRecipe) {
		return false
	}
	return fe.JSONLDErr == nil || errors.Is(fe.JSONLDErr, ErrNoRecipe)
}

// SourceName derives a display name from a URL's host:
// "https://www.seriouseats.com/x" → "Seriouseats.com".
func SourceName(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(host)
	return string(unicode.ToUpper(r)) + host[size:]
}
