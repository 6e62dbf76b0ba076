package domain

// CatalogState is the lifecycle state of the reference catalog.
type CatalogState int

const (
	// CatalogUnloaded means no records are available; queries return empty results.
	CatalogUnloaded CatalogState = iota

	// CatalogReady means records are loaded and queries are active.
	CatalogReady
)

// String returns the string representation.
func (s CatalogState) String() string {
	switch s {
	case CatalogReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// IsReady returns true if queries against the catalog are active.
func (s CatalogState) IsReady() bool {
	return s == CatalogReady
}

// SourceBatch is the output of reading a reference dataset.
type SourceBatch struct {
	// Records are the validated records in file order.
	Records []ReferenceRecord

	// Files is the number of files read successfully.
	Files int

	// SkippedFiles counts files that could not be parsed.
	SkippedFiles int

	// SkippedRecords counts records that failed validation.
	SkippedRecords int
}

// LoadResult describes the outcome of a catalog load.
type LoadResult struct {
	// State is the catalog state after the load.
	State CatalogState

	// Records is the number of records now in the catalog.
	Records int

	// Files is the number of files read.
	Files int

	// Skipped is the number of malformed files and records skipped.
	Skipped int

	// Reason explains an unloaded state (empty when ready).
	Reason string
}
