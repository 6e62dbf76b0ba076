package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [medicine...]",
	Short: "Check medicines taken together",
	Long: `Resolves each medicine against the reference catalog, reports ingredients
shared between them, retrieves contraindications and other safety records for
their ingredients, and grades the overall risk (SAFE, LOW, MEDIUM, HIGH).`,
	Args:        cobra.MinimumNArgs(1),
	RunE:        runAnalyze,
	Annotations: catalogAnnotation,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if regimenAnalyzer == nil {
		return errors.New("regimen analyzer not configured")
	}

	analysis, err := regimenAnalyzer.Analyze(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return printJSON(cmd, analysis)
	}

	cmd.Printf("Risk: %s\n\n", analysis.Risk)

	cmd.Println("Medicines:")
	for _, name := range analysis.Medicines {
		if record, ok := analysis.Resolved[name]; ok {
			cmd.Printf("  %s -> %s (%s)\n", name, record.Name, record.ID)
		} else {
			cmd.Printf("  %s (not in catalog)\n", name)
		}
	}
	cmd.Println()

	if len(analysis.Duplicates) > 0 {
		cmd.Println("Duplicate ingredients:")
		for _, d := range analysis.Duplicates {
			cmd.Printf("  %s: %s\n", d.Ingredient, strings.Join(d.Medicines, ", "))
		}
		cmd.Println()
	}

	if len(analysis.Interactions) > 0 {
		cmd.Println("Interactions:")
		printDocuments(cmd, analysis.Interactions)
	}

	printReport(cmd, analysis.Safety)
	return nil
}
