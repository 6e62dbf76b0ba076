package driven

import (
	"context"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// ReferenceSource reads the reference medicine dataset.
// Implementations skip files and records that do not conform and report
// the counts in the returned batch.
type ReferenceSource interface {
	// Read loads every record. It returns an error only when the source as a
	// whole is unavailable (for example a missing directory).
	Read(ctx context.Context) (*domain.SourceBatch, error)

	// Location describes where records are read from.
	Location() string
}

// SafetySource reads tabular safety rows for one category.
type SafetySource interface {
	// Rows returns the parsed rows and the number of rows skipped.
	Rows(ctx context.Context) ([]domain.RawSafetyRow, int, error)

	// Category is the safety category every row belongs to.
	Category() domain.SafetyCategory

	// Name identifies the source in logs.
	Name() string
}
