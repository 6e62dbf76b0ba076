package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

var (
	identifyLimit int
	identifyJSON  bool
)

var identifyCmd = &cobra.Command{
	Use:   "identify [text]",
	Short: "Rank reference medicines against extracted text",
	Long: `Scores every reference medicine against text read off a package or pill
(OCR output, a typed name or an imprint) and prints the best candidates.

When no text argument is given the text is read from stdin, so OCR output can
be piped in directly:

  ocr-tool photo.jpg | pillmate identify`,
	Args:        cobra.MaximumNArgs(1),
	RunE:        runIdentify,
	Annotations: catalogAnnotation,
}

func init() {
	identifyCmd.Flags().IntVarP(&identifyLimit, "limit", "n", 0, "maximum number of candidates (0 = configured top N)")
	identifyCmd.Flags().BoolVar(&identifyJSON, "json", false, "output candidates as JSON")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	if candidateSearch == nil {
		return errors.New("candidate search not configured")
	}

	text, err := identifyText(cmd, args)
	if err != nil {
		return err
	}

	if catalogService != nil && !catalogService.State().IsReady() {
		cmd.PrintErrln("Warning: reference catalog is not loaded; run 'pillmate catalog stats' for details.")
	}

	candidates := candidateSearch.Search(cmd.Context(), text)
	if identifyLimit > 0 && len(candidates) > identifyLimit {
		candidates = candidates[:identifyLimit]
	}

	if identifyJSON {
		return outputCandidatesJSON(cmd, candidates)
	}
	outputCandidatesTable(cmd, candidates)
	return nil
}

// identifyText takes the argument, or all of stdin when none is given.
func identifyText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

type candidateJSON struct {
	Score    float64      `json:"score"`
	Medicine medicineJSON `json:"medicine"`
}

type medicineJSON struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	NameEn       string   `json:"name_en,omitempty"`
	Company      string   `json:"company,omitempty"`
	CompanyEn    string   `json:"company_en,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Shape        string   `json:"shape,omitempty"`
	Color        string   `json:"color,omitempty"`
	ImprintFront string   `json:"imprint_front,omitempty"`
	ImprintBack  string   `json:"imprint_back,omitempty"`
	ImageRef     string   `json:"image_ref,omitempty"`
}

func toMedicineJSON(r *domain.ReferenceRecord) medicineJSON {
	return medicineJSON{
		ID:           r.ID,
		Name:         r.Name,
		NameEn:       r.NameEn,
		Company:      r.Company,
		CompanyEn:    r.CompanyEn,
		Ingredients:  r.Ingredients,
		Shape:        r.Shape,
		Color:        r.Color,
		ImprintFront: r.ImprintFront,
		ImprintBack:  r.ImprintBack,
		ImageRef:     r.ImageRef,
	}
}

func outputCandidatesJSON(cmd *cobra.Command, candidates []domain.MatchCandidate) error {
	out := make([]candidateJSON, len(candidates))
	for i := range candidates {
		out[i] = candidateJSON{
			Score:    candidates[i].Score,
			Medicine: toMedicineJSON(&candidates[i].Record),
		}
	}
	return printJSON(cmd, out)
}

func outputCandidatesTable(cmd *cobra.Command, candidates []domain.MatchCandidate) {
	if len(candidates) == 0 {
		cmd.Println("No candidates found.")
		return
	}

	cmd.Println("Candidates:")
	cmd.Println()
	for i := range candidates {
		c := &candidates[i]
		cmd.Printf("  [%d] %s (%.0f%%)\n", i+1, c.Record.Name, c.Score*100)
		printRecordSummary(cmd, &c.Record, "      ")
		cmd.Println()
	}
}

// printRecordSummary prints the identifying fields of a record.
func printRecordSummary(cmd *cobra.Command, r *domain.ReferenceRecord, indent string) {
	cmd.Printf("%sID: %s\n", indent, r.ID)
	if r.Company != "" {
		cmd.Printf("%sCompany: %s\n", indent, r.Company)
	}
	if len(r.Ingredients) > 0 {
		cmd.Printf("%sIngredients: %s\n", indent, strings.Join(r.Ingredients, ", "))
	}
	if imprint := formatImprint(r); imprint != "" {
		cmd.Printf("%sImprint: %s\n", indent, imprint)
	}
}

func formatImprint(r *domain.ReferenceRecord) string {
	var parts []string
	if domain.HasImprint(r.ImprintFront) {
		parts = append(parts, r.ImprintFront)
	}
	if domain.HasImprint(r.ImprintBack) {
		parts = append(parts, r.ImprintBack)
	}
	return strings.Join(parts, " / ")
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
