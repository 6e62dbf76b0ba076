package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

var (
	catalogFindLimit    int
	catalogJSON         bool
	catalogImprintFront string
	catalogImprintBack  string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the reference medicine catalog",
	Long: `Commands for the reference medicine catalog loaded from the configured
dataset directory (catalog.dir).`,
	Annotations: catalogAnnotation,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog state and size",
	RunE:  runCatalogStats,
}

var catalogFindCmd = &cobra.Command{
	Use:   "find [name]",
	Short: "Find medicines by name or company",
	Long:  `Finds medicines whose name, English name or company contains the query.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogFind,
}

var catalogImprintCmd = &cobra.Command{
	Use:   "imprint",
	Short: "Find medicines by imprint",
	Long: `Finds medicines whose imprint matches exactly, ignoring case.
Give --front, --back or both.`,
	RunE: runCatalogImprint,
}

var catalogGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one medicine by item id",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogGet,
}

var catalogReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the dataset directory",
	RunE:  runCatalogReload,
}

func init() {
	catalogFindCmd.Flags().IntVarP(&catalogFindLimit, "limit", "n", 10, "maximum number of results")
	catalogImprintCmd.Flags().StringVar(&catalogImprintFront, "front", "", "front imprint")
	catalogImprintCmd.Flags().StringVar(&catalogImprintBack, "back", "", "back imprint")
	catalogCmd.PersistentFlags().BoolVar(&catalogJSON, "json", false, "output results as JSON")

	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogFindCmd)
	catalogCmd.AddCommand(catalogImprintCmd)
	catalogCmd.AddCommand(catalogGetCmd)
	catalogCmd.AddCommand(catalogReloadCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogStats(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	cmd.Printf("State: %s\n", catalogService.State())
	cmd.Printf("Records: %d\n", catalogService.Count())
	return nil
}

func runCatalogFind(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	return outputRecords(cmd, catalogService.FindByName(args[0], catalogFindLimit))
}

func runCatalogImprint(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	if catalogImprintFront == "" && catalogImprintBack == "" {
		return errors.New("give --front, --back or both")
	}
	return outputRecords(cmd, catalogService.FindByImprint(catalogImprintFront, catalogImprintBack))
}

func runCatalogGet(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	record, ok := catalogService.GetByID(args[0])
	if !ok {
		return errors.New("medicine not found: " + args[0])
	}

	if catalogJSON {
		return printJSON(cmd, toMedicineJSON(&record))
	}

	cmd.Printf("%s\n", record.Name)
	if record.NameEn != "" {
		cmd.Printf("  English name: %s\n", record.NameEn)
	}
	printRecordSummary(cmd, &record, "  ")
	if record.Shape != "" {
		cmd.Printf("  Shape: %s\n", record.Shape)
	}
	if record.Color != "" {
		cmd.Printf("  Color: %s\n", record.Color)
	}
	if record.ImageRef != "" {
		cmd.Printf("  Image: %s\n", record.ImageRef)
	}
	return nil
}

func runCatalogReload(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	result := catalogService.Reload(cmd.Context())
	printLoadResult(cmd, result)
	return nil
}

func printLoadResult(cmd *cobra.Command, result domain.LoadResult) {
	if !result.State.IsReady() {
		cmd.Printf("Catalog unloaded: %s\n", result.Reason)
		return
	}
	cmd.Printf("Catalog ready: %d records from %d files", result.Records, result.Files)
	if result.Skipped > 0 {
		cmd.Printf(" (%d skipped)", result.Skipped)
	}
	cmd.Println()
}

func outputRecords(cmd *cobra.Command, records []domain.ReferenceRecord) error {
	if catalogJSON {
		out := make([]medicineJSON, len(records))
		for i := range records {
			out[i] = toMedicineJSON(&records[i])
		}
		return printJSON(cmd, out)
	}

	if len(records) == 0 {
		cmd.Println("No medicines found.")
		return nil
	}
	for i := range records {
		cmd.Printf("  [%d] %s\n", i+1, records[i].Name)
		printRecordSummary(cmd, &records[i], "      ")
		cmd.Println()
	}
	return nil
}
