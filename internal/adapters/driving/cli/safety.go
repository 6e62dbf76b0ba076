package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

var (
	safetyCategory  string
	safetyDrugsK    int
	safetyQuestionK int
	safetyJSON      bool
)

var safetyCmd = &cobra.Command{
	Use:   "safety",
	Short: "Query the drug-safety index",
	Long: `Commands for retrieving drug-safety records (DUR) from the safety index.

Categories:
  contraindication       - combinations that must not be taken together
  age_restriction        - age-restricted medicines
  pregnancy_restriction  - medicines restricted during pregnancy
  elderly_caution        - medicines requiring care for the elderly

The index is built with 'pillmate ingest'.`,
}

var safetyDrugsCmd = &cobra.Command{
	Use:   "drugs [name...]",
	Short: "Search one safety category by drug names",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSafetyDrugs,
}

var safetyReportCmd = &cobra.Command{
	Use:   "report [name...]",
	Short: "Search every safety category by drug names",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSafetyReport,
}

var safetyQuestionCmd = &cobra.Command{
	Use:   "question [text]",
	Short: "Search the whole index with free text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSafetyQuestion,
}

var safetyAskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a safety question with the configured LLM",
	Long: `Retrieves safety records relevant to the question and asks the configured
LLM to answer from them. Requires an LLM provider ('pillmate settings llm').`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSafetyAsk,
}

func init() {
	safetyDrugsCmd.Flags().StringVarP(&safetyCategory, "category", "c", "contraindication", "safety category")
	safetyDrugsCmd.Flags().IntVar(&safetyDrugsK, "k", 0, "number of records (0 = category default)")
	safetyQuestionCmd.Flags().IntVar(&safetyQuestionK, "k", domain.DefaultQuestionK, "number of records")
	safetyCmd.PersistentFlags().BoolVar(&safetyJSON, "json", false, "output results as JSON")

	safetyCmd.AddCommand(safetyDrugsCmd)
	safetyCmd.AddCommand(safetyReportCmd)
	safetyCmd.AddCommand(safetyQuestionCmd)
	safetyCmd.AddCommand(safetyAskCmd)
	rootCmd.AddCommand(safetyCmd)
}

func runSafetyDrugs(cmd *cobra.Command, args []string) error {
	if safetyRetriever == nil {
		return errors.New("safety retriever not configured")
	}

	category, ok := domain.ParseSafetyCategory(safetyCategory)
	if !ok {
		return fmt.Errorf("%w: unknown safety category %q", domain.ErrInvalidInput, safetyCategory)
	}

	result := safetyRetriever.SearchByDrugNames(cmd.Context(), args, category, safetyDrugsK)
	if result.Err != nil {
		return fmt.Errorf("safety search failed: %w", result.Err)
	}

	if safetyJSON {
		return printJSON(cmd, result.OrEmpty())
	}
	printCategory(cmd, category, result.OrEmpty())
	return nil
}

func runSafetyReport(cmd *cobra.Command, args []string) error {
	if safetyRetriever == nil {
		return errors.New("safety retriever not configured")
	}

	report := safetyRetriever.SearchAllCategories(cmd.Context(), args)
	if safetyJSON {
		out := make(map[string][]domain.SafetyDocument, len(report))
		for c, docs := range report {
			out[string(c)] = docs
		}
		return printJSON(cmd, out)
	}

	cmd.Printf("Safety report for %s\n\n", strings.Join(args, ", "))
	printReport(cmd, report)
	return nil
}

func runSafetyQuestion(cmd *cobra.Command, args []string) error {
	if safetyRetriever == nil {
		return errors.New("safety retriever not configured")
	}

	docs, err := safetyRetriever.SearchByQuestion(cmd.Context(), strings.Join(args, " "), safetyQuestionK)
	if err != nil {
		return fmt.Errorf("safety search failed: %w", err)
	}

	if safetyJSON {
		return printJSON(cmd, docs)
	}
	printDocuments(cmd, docs)
	return nil
}

func runSafetyAsk(cmd *cobra.Command, args []string) error {
	if safetyAdvisor == nil {
		return errors.New("safety advisor not configured")
	}

	answer, err := safetyAdvisor.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return fmt.Errorf("%w; run 'pillmate settings llm' to configure one", err)
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if safetyJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		printDocuments(cmd, answer.Sources)
	}
	return nil
}

func printReport(cmd *cobra.Command, report domain.SafetyReport) {
	for _, c := range domain.AllSafetyCategories() {
		printCategory(cmd, c, report[c])
	}
}

func printCategory(cmd *cobra.Command, category domain.SafetyCategory, docs []domain.SafetyDocument) {
	cmd.Printf("[%s] %s (%d)\n", category.Label(), category.Description(), len(docs))
	if len(docs) == 0 {
		cmd.Println("  No records found.")
		cmd.Println()
		return
	}
	printDocuments(cmd, docs)
}

func printDocuments(cmd *cobra.Command, docs []domain.SafetyDocument) {
	for i := range docs {
		d := &docs[i]
		subject := d.PrimaryDrug
		if subject == "" {
			subject = d.PrimaryProduct
		}
		if d.SecondaryDrug != "" {
			subject += " + " + d.SecondaryDrug
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, subject, d.Similarity)
		if d.Restriction != "" {
			cmd.Printf("      Restriction: %s\n", d.Restriction)
		}
		if d.Detail != "" {
			cmd.Printf("      %s\n", d.Detail)
		}
	}
	cmd.Println()
}
