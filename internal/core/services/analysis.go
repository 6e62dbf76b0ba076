package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure RegimenService implements the interface.
var _ driving.RegimenAnalyzer = (*RegimenService)(nil)

// RegimenService analyses medicines taken together: shared ingredients,
// contraindicated pairs, and an overall risk grade.
type RegimenService struct {
	catalog   driving.CatalogService
	retriever driving.SafetyRetriever
}

// NewRegimenService creates a regimen analyser.
func NewRegimenService(catalog driving.CatalogService, retriever driving.SafetyRetriever) *RegimenService {
	return &RegimenService{catalog: catalog, retriever: retriever}
}

// regimenItem is one input medicine with the terms it is known by.
type regimenItem struct {
	name  string
	terms []string
}

// Analyze resolves each medicine against the catalog by id or name.
// Unresolved names are treated as ingredient names.
func (s *RegimenService) Analyze(ctx context.Context, medicines []string) (*domain.RegimenAnalysis, error) {
	names := cleanDrugNames(medicines)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no medicines given", domain.ErrInvalidInput)
	}
	logger.Section("Regimen Analysis")

	analysis := &domain.RegimenAnalysis{
		Medicines: names,
		Resolved:  make(map[string]domain.ReferenceRecord),
	}

	items := make([]regimenItem, 0, len(names))
	for _, name := range names {
		item := regimenItem{name: name}
		if record, ok := s.resolve(name); ok {
			analysis.Resolved[name] = record
			for _, ing := range record.Ingredients {
				item.terms = append(item.terms, normalizeText(ing))
			}
		}
		if len(item.terms) == 0 {
			item.terms = []string{normalizeText(name)}
		}
		items = append(items, item)
	}

	analysis.Duplicates = findDuplicates(items)

	queryTerms := uniqueTerms(items)
	if s.retriever != nil {
		analysis.Safety = s.retriever.SearchAllCategories(ctx, queryTerms)
	} else {
		analysis.Safety = emptyReport()
	}
	analysis.Interactions = findInteractions(items, analysis.Safety[domain.CategoryContraindication])

	analysis.Risk = domain.AssessRisk(len(analysis.Duplicates), len(analysis.Interactions))
	logger.Debug("Risk %s: %d duplicates, %d interactions",
		analysis.Risk, len(analysis.Duplicates), len(analysis.Interactions))

	return analysis, nil
}

func (s *RegimenService) resolve(name string) (domain.ReferenceRecord, bool) {
	if s.catalog == nil || !s.catalog.State().IsReady() {
		return domain.ReferenceRecord{}, false
	}
	if record, ok := s.catalog.GetByID(name); ok {
		return record, true
	}
	if found := s.catalog.FindByName(name, 1); len(found) > 0 {
		return found[0], true
	}
	return domain.ReferenceRecord{}, false
}

// findDuplicates lists ingredients appearing in more than one medicine,
// sorted by ingredient.
func findDuplicates(items []regimenItem) []domain.DuplicateIngredient {
	owners := make(map[string][]string)
	for _, item := range items {
		seen := make(map[string]bool)
		for _, term := range item.terms {
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true
			owners[term] = append(owners[term], item.name)
		}
	}

	var dups []domain.DuplicateIngredient
	for term, meds := range owners {
		if len(meds) > 1 {
			dups = append(dups, domain.DuplicateIngredient{Ingredient: term, Medicines: meds})
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Ingredient < dups[j].Ingredient })
	return dups
}

// findInteractions keeps contraindication documents whose two drugs belong
// to two different medicines of the regimen.
func findInteractions(items []regimenItem, docs []domain.SafetyDocument) []domain.SafetyDocument {
	var out []domain.SafetyDocument
	for i := range docs {
		a := owner(items, docs[i].PrimaryDrug)
		b := owner(items, docs[i].SecondaryDrug)
		if a >= 0 && b >= 0 && a != b {
			out = append(out, docs[i])
		}
	}
	return out
}

// owner returns the index of the first item with a term matching drug, or -1.
func owner(items []regimenItem, drug string) int {
	d := normalizeText(drug)
	if d == "" {
		return -1
	}
	for i, item := range items {
		for _, term := range item.terms {
			if term != "" && (strings.Contains(d, term) || strings.Contains(term, d)) {
				return i
			}
		}
	}
	return -1
}

func uniqueTerms(items []regimenItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		for _, term := range item.terms {
			if term != "" && !seen[term] {
				seen[term] = true
				out = append(out, term)
			}
		}
	}
	return out
}

func emptyReport() domain.SafetyReport {
	report := make(domain.SafetyReport)
	for _, c := range domain.AllSafetyCategories() {
		report[c] = []domain.SafetyDocument{}
	}
	return report
}
