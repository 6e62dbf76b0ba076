package driven

import (
	"context"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// VectorStore holds the shared safety document collection and answers
// cosine similarity queries over it.
//
// All categories live in one collection; a query may be restricted to a
// single category through SearchFilter.
type VectorStore interface {
	// Add inserts documents with their embeddings.
	Add(ctx context.Context, docs []domain.SafetyDocument) error

	// Search returns up to k documents ordered by descending similarity.
	// A nil filter searches the whole collection.
	Search(ctx context.Context, query []float32, k int, filter *SearchFilter) ([]domain.SafetyDocument, error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int, error)

	// Reset removes every document in the collection.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SearchFilter restricts a similarity query by metadata.
type SearchFilter struct {
	// Category limits results to one safety category.
	Category domain.SafetyCategory
}

// CategoryFilter returns a filter for one category.
func CategoryFilter(c domain.SafetyCategory) *SearchFilter {
	return &SearchFilter{Category: c}
}

// Matches reports whether a document passes the filter.
func (f *SearchFilter) Matches(doc *domain.SafetyDocument) bool {
	if f == nil || f.Category == "" {
		return true
	}
	return doc.Category == f.Category
}
