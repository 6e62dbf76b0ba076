package driving

import (
	"context"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// SafetyRetriever serves drug-safety documents from the safety index.
type SafetyRetriever interface {
	// SearchByDrugNames queries one category for the given drug names.
	SearchByDrugNames(ctx context.Context, names []string, category domain.SafetyCategory, k int) domain.SafetyResult

	// SearchAllCategories queries every category. Every category key is
	// present in the report; failed categories map to empty slices.
	SearchAllCategories(ctx context.Context, names []string) domain.SafetyReport

	// SearchByQuestion runs an unfiltered query with free text.
	SearchByQuestion(ctx context.Context, question string, k int) ([]domain.SafetyDocument, error)
}

// SafetyIndexer builds the safety index offline.
type SafetyIndexer interface {
	// Ingest renders, embeds and stores rows of one category.
	// It returns the number of documents added.
	Ingest(ctx context.Context, rows []domain.RawSafetyRow, category domain.SafetyCategory) (int, error)
}

// SafetyAdvisor answers free-text safety questions with retrieved context.
type SafetyAdvisor interface {
	// Ask retrieves context for the question and generates an answer.
	Ask(ctx context.Context, question string) (*domain.SafetyAnswer, error)
}

// RegimenAnalyzer checks a set of medicines taken together.
type RegimenAnalyzer interface {
	// Analyze resolves the medicines, finds shared ingredients and
	// interactions, and grades the risk.
	Analyze(ctx context.Context, medicines []string) (*domain.RegimenAnalysis, error)
}
