package driving

import (
	"context"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// MatchScorer scores extracted text against one reference record.
type MatchScorer interface {
	// Score returns a confidence in [0, 1].
	Score(extractedText string, record *domain.ReferenceRecord) float64
}

// CandidateSearch turns OCR text into ranked medicine candidates.
type CandidateSearch interface {
	// Search returns candidates by descending score. It never fails;
	// unusable input yields an empty slice.
	Search(ctx context.Context, extractedText string) []domain.MatchCandidate
}
