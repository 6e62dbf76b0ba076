package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure SafetyRetrieverService implements the interface.
var _ driving.SafetyRetriever = (*SafetyRetrieverService)(nil)

// SafetyRetrieverService runs similarity queries against the safety index.
// Ranking is the vector store's cosine similarity; nothing is re-ranked.
type SafetyRetrieverService struct {
	backends driven.SafetyBackends
}

// NewSafetyRetrieverService creates a retriever over the given backends.
func NewSafetyRetrieverService(backends driven.SafetyBackends) *SafetyRetrieverService {
	return &SafetyRetrieverService{backends: backends}
}

// SearchByDrugNames queries one category with "<label> <names...>".
// No backend call is made when names is empty.
func (s *SafetyRetrieverService) SearchByDrugNames(
	ctx context.Context, names []string, category domain.SafetyCategory, k int,
) domain.SafetyResult {
	names = cleanDrugNames(names)
	if len(names) == 0 {
		return domain.SafetyResult{Documents: []domain.SafetyDocument{}}
	}
	if !category.IsValid() {
		return domain.SafetyResult{
			Documents: []domain.SafetyDocument{},
			Err:       fmt.Errorf("%w: unknown safety category %q", domain.ErrInvalidInput, category),
		}
	}
	if k <= 0 {
		k = category.DefaultK()
	}

	query := category.Label() + " " + strings.Join(names, " ")
	logger.Debug("Safety query [%s] k=%d: %q", category, k, query)

	docs, err := s.query(ctx, query, k, driven.CategoryFilter(category))
	if err != nil {
		return domain.SafetyResult{Documents: []domain.SafetyDocument{}, Err: err}
	}
	return domain.SafetyResult{Documents: docs}
}

// SearchAllCategories queries every category independently. A failing
// category maps to an empty slice and does not affect the others.
func (s *SafetyRetrieverService) SearchAllCategories(ctx context.Context, names []string) domain.SafetyReport {
	logger.Section("Safety Report")

	report := make(domain.SafetyReport, len(domain.AllSafetyCategories()))
	for _, category := range domain.AllSafetyCategories() {
		result := s.SearchByDrugNames(ctx, names, category, category.DefaultK())
		if result.Err != nil {
			logger.Warn("%s retrieval failed: %v", category, result.Err)
		}
		report[category] = result.OrEmpty()
	}
	return report
}

// SearchByQuestion runs an unfiltered query with the raw question text.
// On failure it returns an empty slice together with the error so the
// caller can decide whether to fold it.
func (s *SafetyRetrieverService) SearchByQuestion(
	ctx context.Context, question string, k int,
) ([]domain.SafetyDocument, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return []domain.SafetyDocument{}, nil
	}
	if k <= 0 {
		k = domain.DefaultQuestionK
	}
	logger.Debug("Safety question k=%d: %q", k, question)

	docs, err := s.query(ctx, question, k, nil)
	if err != nil {
		return []domain.SafetyDocument{}, err
	}
	return docs, nil
}

func (s *SafetyRetrieverService) query(
	ctx context.Context, text string, k int, filter *driven.SearchFilter,
) ([]domain.SafetyDocument, error) {
	if s.backends == nil {
		return nil, domain.ErrDataUnavailable
	}
	embedder, store, err := s.backends.Backends(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}

	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrBackendFailure, err)
	}

	docs, err := store.Search(ctx, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrBackendFailure, err)
	}
	if docs == nil {
		docs = []domain.SafetyDocument{}
	}
	return docs, nil
}

// cleanDrugNames trims names and drops blanks.
func cleanDrugNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
