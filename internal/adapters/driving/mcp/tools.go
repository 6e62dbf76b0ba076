package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// defaultFindLimit caps find_medicine results when no limit is given.
const defaultFindLimit = 10

// MedicineOutput is a reference record as returned by tools and resources.
type MedicineOutput struct {
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

// IdentifyInput is the input schema for the identify_medicine tool.
type IdentifyInput struct {
	Text string `json:"text" jsonschema:"text read from the medicine package or pill by OCR"`
}

// CandidateOutput is one scored candidate.
type CandidateOutput struct {
	Medicine MedicineOutput `json:"medicine"`
	Score    float64        `json:"score"`
}

// IdentifyOutput is the output schema for the identify_medicine tool.
type IdentifyOutput struct {
	Candidates []CandidateOutput `json:"candidates"`
	Count      int               `json:"count"`
}

// FindInput is the input schema for the find_medicine tool.
type FindInput struct {
	Name         string `json:"name,omitempty" jsonschema:"substring of the product name, English name or company"`
	ImprintFront string `json:"imprint_front,omitempty" jsonschema:"text printed on the front face"`
	ImprintBack  string `json:"imprint_back,omitempty" jsonschema:"text printed on the back face"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of name matches (default 10)"`
}

// FindOutput is the output schema for the find_medicine tool.
type FindOutput struct {
	Medicines []MedicineOutput `json:"medicines"`
	Count     int              `json:"count"`
}

// SafetySearchInput is the input schema for the search_safety tool.
type SafetySearchInput struct {
	Drugs    []string `json:"drugs" jsonschema:"ingredient or product names"`
	Category string   `json:"category" jsonschema:"contraindication, age_restriction, pregnancy_restriction or elderly_caution"`
	K        int      `json:"k,omitempty" jsonschema:"number of documents (default depends on category)"`
}

// SafetyDocumentOutput is one retrieved safety document.
type SafetyDocumentOutput struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	PrimaryDrug      string  `json:"primary_drug"`
	SecondaryDrug    string  `json:"secondary_drug,omitempty"`
	PrimaryProduct   string  `json:"primary_product,omitempty"`
	SecondaryProduct string  `json:"secondary_product,omitempty"`
	Restriction      string  `json:"restriction,omitempty"`
	Detail           string  `json:"detail"`
	NoticeDate       string  `json:"notice_date,omitempty"`
	Content          string  `json:"content"`
	Similarity       float64 `json:"similarity"`
}

// SafetySearchOutput is the output schema for the search_safety tool.
type SafetySearchOutput struct {
	Category  string                 `json:"category"`
	Documents []SafetyDocumentOutput `json:"documents"`
	Count     int                    `json:"count"`
}

// SafetyReportInput is the input schema for the safety_report tool.
type SafetyReportInput struct {
	Drugs []string `json:"drugs" jsonschema:"ingredient or product names"`
}

// SafetyReportOutput is the output schema for the safety_report tool.
// Every category is always present.
type SafetyReportOutput struct {
	Contraindication     []SafetyDocumentOutput `json:"contraindication"`
	AgeRestriction       []SafetyDocumentOutput `json:"age_restriction"`
	PregnancyRestriction []SafetyDocumentOutput `json:"pregnancy_restriction"`
	ElderlyCaution       []SafetyDocumentOutput `json:"elderly_caution"`
	Total                int                    `json:"total"`
}

// AskInput is the input schema for the ask_safety tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a medication safety question"`
}

// AskOutput is the output schema for the ask_safety tool.
type AskOutput struct {
	Answer  string                 `json:"answer"`
	Sources []SafetyDocumentOutput `json:"sources"`
}

// RegimenInput is the input schema for the analyze_regimen tool.
type RegimenInput struct {
	Medicines []string `json:"medicines" jsonschema:"medicine ids, product names or ingredient names taken together"`
}

// DuplicateOutput is an ingredient shared by several medicines.
type DuplicateOutput struct {
	Ingredient string   `json:"ingredient"`
	Medicines  []string `json:"medicines"`
}

// RegimenOutput is the output schema for the analyze_regimen tool.
type RegimenOutput struct {
	Risk         string                 `json:"risk"`
	Resolved     map[string]string      `json:"resolved"`
	Duplicates   []DuplicateOutput      `json:"duplicates"`
	Interactions []SafetyDocumentOutput `json:"interactions"`
	Safety       SafetyReportOutput     `json:"safety"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "identify_medicine",
		Description: "Rank reference medicines against text read from a package or pill",
	}, s.handleIdentify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_medicine",
		Description: "Look up reference medicines by name or by imprint",
	}, s.handleFind)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_safety",
		Description: "Retrieve drug-safety records of one category for the given drugs",
	}, s.handleSearchSafety)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "safety_report",
		Description: "Retrieve drug-safety records of every category for the given drugs",
	}, s.handleSafetyReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_safety",
		Description: "Answer a medication safety question using retrieved safety records",
	}, s.handleAskSafety)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_regimen",
		Description: "Check medicines taken together for shared ingredients and interactions",
	}, s.handleAnalyzeRegimen)
}

// handleIdentify handles the identify_medicine tool invocation.
func (s *Server) handleIdentify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IdentifyInput,
) (*mcp.CallToolResult, IdentifyOutput, error) {
	candidates := s.ports.Candidates.Search(ctx, input.Text)

	output := IdentifyOutput{
		Candidates: make([]CandidateOutput, len(candidates)),
		Count:      len(candidates),
	}
	for i := range candidates {
		output.Candidates[i] = CandidateOutput{
			Medicine: toMedicineOutput(&candidates[i].Record),
			Score:    candidates[i].Score,
		}
	}
	return nil, output, nil
}

// handleFind handles the find_medicine tool invocation. Imprint lookup wins
// when either face is given.
func (s *Server) handleFind(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FindInput,
) (*mcp.CallToolResult, FindOutput, error) {
	var records []domain.ReferenceRecord
	switch {
	case strings.TrimSpace(input.ImprintFront) != "" || strings.TrimSpace(input.ImprintBack) != "":
		records = s.ports.Catalog.FindByImprint(input.ImprintFront, input.ImprintBack)
	case strings.TrimSpace(input.Name) != "":
		limit := input.Limit
		if limit <= 0 {
			limit = defaultFindLimit
		}
		records = s.ports.Catalog.FindByName(input.Name, limit)
	default:
		return nil, FindOutput{}, fmt.Errorf("%w: name or imprint required", domain.ErrInvalidInput)
	}

	output := FindOutput{
		Medicines: make([]MedicineOutput, len(records)),
		Count:     len(records),
	}
	for i := range records {
		output.Medicines[i] = toMedicineOutput(&records[i])
	}
	return nil, output, nil
}

// handleSearchSafety handles the search_safety tool invocation.
func (s *Server) handleSearchSafety(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SafetySearchInput,
) (*mcp.CallToolResult, SafetySearchOutput, error) {
	if s.ports.Safety == nil {
		return nil, SafetySearchOutput{}, ErrServiceNotConfigured
	}
	category, ok := domain.ParseSafetyCategory(strings.TrimSpace(input.Category))
	if !ok {
		return nil, SafetySearchOutput{}, fmt.Errorf("%w: unknown safety category %q",
			domain.ErrInvalidInput, input.Category)
	}

	result := s.ports.Safety.SearchByDrugNames(ctx, input.Drugs, category, input.K)
	if result.Err != nil {
		return nil, SafetySearchOutput{}, result.Err
	}

	docs := toDocumentOutputs(result.Documents)
	return nil, SafetySearchOutput{
		Category:  category.String(),
		Documents: docs,
		Count:     len(docs),
	}, nil
}

// handleSafetyReport handles the safety_report tool invocation.
func (s *Server) handleSafetyReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SafetyReportInput,
) (*mcp.CallToolResult, SafetyReportOutput, error) {
	if s.ports.Safety == nil {
		return nil, SafetyReportOutput{}, ErrServiceNotConfigured
	}
	report := s.ports.Safety.SearchAllCategories(ctx, input.Drugs)
	return nil, toReportOutput(report), nil
}

// handleAskSafety handles the ask_safety tool invocation.
func (s *Server) handleAskSafety(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Advisor == nil {
		return nil, AskOutput{}, ErrServiceNotConfigured
	}
	answer, err := s.ports.Advisor.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:  answer.Answer,
		Sources: toDocumentOutputs(answer.Sources),
	}, nil
}

// handleAnalyzeRegimen handles the analyze_regimen tool invocation.
func (s *Server) handleAnalyzeRegimen(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RegimenInput,
) (*mcp.CallToolResult, RegimenOutput, error) {
	if s.ports.Regimen == nil {
		return nil, RegimenOutput{}, ErrServiceNotConfigured
	}
	analysis, err := s.ports.Regimen.Analyze(ctx, input.Medicines)
	if err != nil {
		return nil, RegimenOutput{}, err
	}

	output := RegimenOutput{
		Risk:         string(analysis.Risk),
		Resolved:     make(map[string]string, len(analysis.Resolved)),
		Duplicates:   make([]DuplicateOutput, len(analysis.Duplicates)),
		Interactions: toDocumentOutputs(analysis.Interactions),
		Safety:       toReportOutput(analysis.Safety),
	}
	for name, record := range analysis.Resolved {
		output.Resolved[name] = record.ID
	}
	for i, dup := range analysis.Duplicates {
		output.Duplicates[i] = DuplicateOutput{Ingredient: dup.Ingredient, Medicines: dup.Medicines}
	}
	return nil, output, nil
}

func toMedicineOutput(r *domain.ReferenceRecord) MedicineOutput {
	return MedicineOutput{
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

func toDocumentOutputs(docs []domain.SafetyDocument) []SafetyDocumentOutput {
	out := make([]SafetyDocumentOutput, len(docs))
	for i := range docs {
		out[i] = SafetyDocumentOutput{
			ID:               docs[i].ID,
			Category:         docs[i].Category.String(),
			PrimaryDrug:      docs[i].PrimaryDrug,
			SecondaryDrug:    docs[i].SecondaryDrug,
			PrimaryProduct:   docs[i].PrimaryProduct,
			SecondaryProduct: docs[i].SecondaryProduct,
			Restriction:      docs[i].Restriction,
			Detail:           docs[i].Detail,
			NoticeDate:       docs[i].NoticeDate,
			Content:          docs[i].Content,
			Similarity:       docs[i].Similarity,
		}
	}
	return out
}

func toReportOutput(report domain.SafetyReport) SafetyReportOutput {
	return SafetyReportOutput{
		Contraindication:     toDocumentOutputs(report[domain.CategoryContraindication]),
		AgeRestriction:       toDocumentOutputs(report[domain.CategoryAgeRestriction]),
		PregnancyRestriction: toDocumentOutputs(report[domain.CategoryPregnancyRestriction]),
		ElderlyCaution:       toDocumentOutputs(report[domain.CategoryElderlyCaution]),
		Total:                report.Total(),
	}
}
