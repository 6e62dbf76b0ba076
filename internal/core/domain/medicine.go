package domain

import (
	"fmt"
	"strings"
)

// NoImprintMarker is the dataset sentinel for a face without any imprint.
// It never counts as an imprint match.
const NoImprintMarker = "없음"

// IngredientDelimiter separates ingredient names in the source dataset.
const IngredientDelimiter = "|"

// ReferenceRecord is one medicine from the reference dataset.
// Records are immutable once the catalog is loaded.
type ReferenceRecord struct {
	// ID is the unique item identifier (item sequence in the source dataset).
	ID string

	// Name is the display name in the local language.
	Name string

	// NameEn is the display name in the alternate language.
	NameEn string

	// Company is the manufacturer name in the local language.
	Company string

	// CompanyEn is the manufacturer name in the alternate language.
	CompanyEn string

	// Ingredients is the ordered list of ingredient names.
	Ingredients []string

	// Shape is the physical shape descriptor (optional).
	Shape string

	// Color is the primary colour descriptor (optional).
	Color string

	// ImprintFront is the text embossed on the front face (optional).
	ImprintFront string

	// ImprintBack is the text embossed on the back face (optional).
	ImprintBack string

	// ImageRef is an opaque reference to a product image (optional).
	ImageRef string
}

// Validate checks that the record carries the fields every lookup relies on.
func (r *ReferenceRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: record has no id", ErrMalformedInput)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: record %s has no name", ErrMalformedInput, r.ID)
	}
	return nil
}

// HasImprint reports whether a face value is a real imprint.
func HasImprint(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && v != NoImprintMarker
}

// ParseIngredients splits a delimiter-joined ingredient string into names.
// Empty entries are dropped.
func ParseIngredients(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, IngredientDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MatchCandidate is one scored record produced by a single search call.
type MatchCandidate struct {
	// Record is the matched reference record.
	Record ReferenceRecord

	// Score is the match confidence in [0, 1].
	Score float64
}
