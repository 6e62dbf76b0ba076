package driving

import (
	"context"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// CatalogService exposes lookups over the reference medicine catalog.
// All queries return empty results while the catalog is unloaded.
type CatalogService interface {
	// Load reads the reference dataset. Data problems are reported in the
	// result rather than as an error.
	Load(ctx context.Context) domain.LoadResult

	// Reload re-reads the dataset and swaps it in atomically.
	// A failed reload keeps the current snapshot.
	Reload(ctx context.Context) domain.LoadResult

	// State returns the current lifecycle state.
	State() domain.CatalogState

	// Count returns the number of loaded records.
	Count() int

	// FindByName matches name, alternate name and company by substring.
	FindByName(query string, limit int) []domain.ReferenceRecord

	// FindByImprint matches imprints by case-insensitive equality.
	FindByImprint(front, back string) []domain.ReferenceRecord

	// GetByID returns the record with the given id.
	GetByID(id string) (domain.ReferenceRecord, bool)
}
