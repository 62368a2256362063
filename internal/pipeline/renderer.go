package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/mattn/go-runewidth"

	"github.com/ppiankov/larder/internal/model"
)

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// MarshalJSON encodes a report with two-space indentation
func MarshalJSON(report *model.RecipeReport) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(report, "", "  ")
}

// RenderJSON writes the report to path as indented JSON
func (r *Renderer) RenderJSON(report *model.RecipeReport, path string) error {
	data, err := MarshalJSON(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// RenderMarkdown writes the recipe card to path
func (r *Renderer) RenderMarkdown(report *model.RecipeReport, path string) error {
	return os.WriteFile(path, []byte(r.MarkdownString(report)), 0o644)
}

// MarkdownString renders the report as a Markdown recipe card
func (r *Renderer) MarkdownString(report *model.RecipeReport) string {
	var b strings.Builder
	recipe := report.Recipe

	fmt.Fprintf(&b, "# %s\n\n", recipe.Title)
	if recipe.SourceName != "" || report.SourceURL != "" {
		fmt.Fprintf(&b, "*From [%s](%s)*\n\n", firstNonEmpty(recipe.SourceName, report.SourceURL), report.SourceURL)
	}
	if len(recipe.ImageURLs) > 0 {
		fmt.Fprintf(&b, "![%s](%s)\n\n", recipe.Title, recipe.ImageURLs[0])
	}
	if recipe.Description != "" {
		b.WriteString(recipe.Description + "\n\n")
	}

	var facts []string
	for _, f := range []struct{ label, value string }{
		{"Servings", recipe.Servings},
		{"Prep", recipe.PrepTime},
		{"Cook", recipe.CookTime},
		{"Total", recipe.TotalTime},
	} {
		if f.value != "" {
			facts = append(facts, fmt.Sprintf("**%s:** %s", f.label, f.value))
		}
	}
	if recipe.Rating != nil {
		facts = append(facts, fmt.Sprintf("**Rating:** %.1f", *recipe.Rating))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, " · ") + "\n\n")
	}

	b.WriteString("## Ingredients\n\n")
	section := ""
	for _, ing := range report.Ingredients {
		if s := ing.SectionString(); s != section {
			section = s
			if section != "" {
				fmt.Fprintf(&b, "\n### %s\n\n", section)
			}
		}
		fmt.Fprintf(&b, "- %s\n", ingredientLine(ing.ParsedIngredient))
	}
	b.WriteString("\n")

	if steps := instructionSteps(recipe.Instructions); len(steps) > 0 {
		b.WriteString("## Instructions\n\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	if recipe.Notes != "" {
		fmt.Fprintf(&b, "## Notes\n\n%s\n\n", recipe.Notes)
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "*Extracted via %s · %d of %d ingredients measured · %d weights added*\n",
			report.Method, report.Summary.WithMeasurements, report.Summary.IngredientLines, report.Summary.WeightsAdded)
	}

	return b.String()
}

// RenderSummary prints an aligned ingredient table and totals to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.RecipeReport) {
	_, _ = fmt.Fprintf(w, "\n%s (%s)\n\n", report.Recipe.Title, report.Method)

	rows := [][]string{{"Amount", "Item", "Note", "Aisle"}}
	for _, ing := range report.Ingredients {
		rows = append(rows, []string{
			measurementsText(ing.Measurements),
			ing.Item,
			ing.NoteString(),
			ing.Category,
		})
	}
	for _, line := range FormatTable(rows) {
		_, _ = fmt.Fprintln(w, line)
	}

	s := report.Summary
	_, _ = fmt.Fprintf(w, "\n  Ingredients:   %d (%d measured, %.0f%%)\n", s.IngredientLines, s.WithMeasurements, s.Coverage*100)
	_, _ = fmt.Fprintf(w, "  Weights added: %d (metric %d, volume %d)\n", s.WeightsAdded, report.MetricStats.Converted(), report.VolumeStats.Converted)
	if len(report.VolumeStats.UnknownIngredients) > 0 {
		_, _ = fmt.Fprintf(w, "  No density:    %s\n", strings.Join(report.VolumeStats.UnknownIngredients, ", "))
	}
	_, _ = fmt.Fprintln(w)
}

// FormatTable renders rows as a Markdown-style table; the first row is the header.
// Columns are padded by display width so wide characters stay aligned.
func FormatTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	widths := make([]int, colCount)
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(row []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for j := 0; j < colCount; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, widths[j]))
			sb.WriteString(" |")
		}
		return sb.String()
	}

	out := []string{line(rows[0])}
	sep := make([]string, colCount)
	for j := range sep {
		sep[j] = strings.Repeat("-", widths[j])
	}
	out = append(out, line(sep))
	for _, row := range rows[1:] {
		out = append(out, line(row))
	}
	return out
}

// ingredientLine renders "2 cups (250 g) flour, sifted"
func ingredientLine(ing model.ParsedIngredient) string {
	parts := []string{}
	if m := measurementsText(ing.Measurements); m != "" {
		parts = append(parts, m)
	}
	parts = append(parts, ing.Item)
	line := strings.Join(parts, " ")
	if note := ing.NoteString(); note != "" {
		line += ", " + note
	}
	return line
}

// measurementsText renders the primary measurement with alternates in parentheses
func measurementsText(ms []model.Measurement) string {
	if len(ms) == 0 {
		return ""
	}
	text := ms[0].String()
	if len(ms) > 1 {
		alts := make([]string, 0, len(ms)-1)
		for _, m := range ms[1:] {
			alts = append(alts, m.String())
		}
		text += " (" + strings.Join(alts, ", ") + ")"
	}
	return text
}

// instructionSteps splits the blank-line separated instruction blob
func instructionSteps(blob string) []string {
	var steps []string
	for _, step := range strings.Split(blob, "\n\n") {
		step = strings.Join(strings.Fields(step), " ")
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
