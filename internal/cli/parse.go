package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/ppiankov/larder/internal/enrich"
	"github.com/ppiankov/larder/internal/ingredient"
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/pipeline"
	"github.com/ppiankov/larder/internal/units"
)

var (
	parseEnrich bool
	parseDomain string
	parseJSON   bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [line...]",
	Short: "Parse ingredient lines",
	Long: `Parse splits ingredient lines into amount, unit, item and note.
Lines come from the arguments, or from stdin when none are given.
Section headers such as "For the sauce:" label the lines that follow.

Example:
  larder parse "2 cups all-purpose flour, sifted" "1 stick (4 oz) butter"
  pbpaste | larder parse --enrich --domain smittenkitchen.com`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseEnrich, "enrich", false, "add gram weights for imperial and volume measurements")
	parseCmd.Flags().StringVar(&parseDomain, "domain", "", "source site for density conventions (with --enrich)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print JSON instead of a table")
}

func runParse(cmd *cobra.Command, args []string) error {
	lines := args
	if len(lines) == 0 {
		var err error
		if lines, err = readLines(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	parsed := ingredient.ParseLines(strings.Join(lines, "\n"))

	var stats enrich.Stats
	if parseEnrich {
		opts := enrich.DefaultOptions()
		opts.Domain = parseDomain
		parsed = enrich.New(opts).EnrichAll(parsed, &stats)
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		data, err := sonic.ConfigStd.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return fmt.Errorf("encode ingredients: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	_, _ = fmt.Fprint(out, ingredientTable(parsed))
	if parseEnrich {
		_, _ = fmt.Fprintf(out, "\nWeights added: %d (metric %d, volume %d)\n",
			stats.Metric.Converted()+stats.Volume.Converted, stats.Metric.Converted(), stats.Volume.Converted)
	}
	return nil
}

func ingredientTable(ings []model.ParsedIngredient) string {
	rows := [][]string{{"Section", "Amount", "Unit", "Item", "Note", "Also"}}
	for _, ing := range ings {
		row := []string{ing.SectionString(), "", "", ing.Item, ing.NoteString(), ""}
		if len(ing.Measurements) > 0 {
			row[1] = ing.Measurements[0].AmountString()
			row[2] = ing.Measurements[0].UnitString()
			alts := make([]string, 0, len(ing.Measurements)-1)
			for _, m := range ing.Measurements[1:] {
				alts = append(alts, m.String())
			}
			row[5] = strings.Join(alts, "; ")
		}
		rows = append(rows, row)
	}
	return strings.Join(pipeline.FormatTable(rows), "\n") + "\n"
}

// categorizeCmd represents the categorize command
var categorizeCmd = &cobra.Command{
	Use:   "categorize [item...]",
	Short: "Show the grocery aisle for ingredient names",
	Long: `Categorize maps ingredient names to grocery aisles such as Produce or Baking.
Items come from the arguments, or from stdin when none are given.

Example:
  larder categorize "sweet potato" "peanut butter" "kosher salt"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := args
		if len(items) == 0 {
			var err error
			if items, err = readLines(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}

		tables := units.Default()
		rows := [][]string{{"Item", "Aisle"}}
		for _, item := range items {
			rows = append(rows, []string{item, tables.Categorize(item)})
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(pipeline.FormatTable(rows), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
}

// readLines returns the non-blank lines of r
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
