package domain

import "fmt"

// ScoreWeights holds the point allocations and similarity thresholds used to
// score extracted text against a reference record. Points are summed and
// divided by 100, so the defaults put a confident name match near 0.6.
type ScoreWeights struct {
	// NameExact is awarded when the full cleaned name appears in the text.
	NameExact float64

	// NameBase is awarded when only the base name appears in the text.
	NameBase float64

	// DoseBonus is added to a name containment when a number in the text
	// also appears in the record name.
	DoseBonus float64

	// NameFuzzy is multiplied by the best token similarity to the base name.
	NameFuzzy float64

	// NameFuzzyThreshold is the minimum similarity for NameFuzzy.
	NameFuzzyThreshold float64

	// AltName is awarded when a token matches the alternate-language name.
	AltName float64

	// AltNameThreshold is the minimum similarity for AltName.
	AltNameThreshold float64

	// ImprintFront is awarded when the front imprint appears in the text.
	ImprintFront float64

	// ImprintBack is awarded when the back imprint appears in the text.
	ImprintBack float64

	// Company is awarded when the local company name appears in the text.
	Company float64

	// CompanyFuzzy is awarded when a token matches the alternate company name.
	CompanyFuzzy float64

	// CompanyFuzzyThreshold is the minimum similarity for CompanyFuzzy.
	CompanyFuzzyThreshold float64

	// IngredientExact is awarded when an ingredient appears in the text.
	IngredientExact float64

	// IngredientFuzzy is awarded when a token matches an ingredient.
	IngredientFuzzy float64

	// IngredientFuzzyThreshold is the minimum similarity for IngredientFuzzy.
	IngredientFuzzyThreshold float64
}

// DefaultScoreWeights returns the standard weight policy.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		NameExact:                60,
		NameBase:                 55,
		DoseBonus:                20,
		NameFuzzy:                50,
		NameFuzzyThreshold:       0.80,
		AltName:                  35,
		AltNameThreshold:         0.85,
		ImprintFront:             12.5,
		ImprintBack:              12.5,
		Company:                  10,
		CompanyFuzzy:             8,
		CompanyFuzzyThreshold:    0.85,
		IngredientExact:          5,
		IngredientFuzzy:          4,
		IngredientFuzzyThreshold: 0.85,
	}
}

// Validate checks that points are non-negative and thresholds lie in (0, 1].
func (w ScoreWeights) Validate() error {
	points := map[string]float64{
		"name_exact":       w.NameExact,
		"name_base":        w.NameBase,
		"dose_bonus":       w.DoseBonus,
		"name_fuzzy":       w.NameFuzzy,
		"alt_name":         w.AltName,
		"imprint_front":    w.ImprintFront,
		"imprint_back":     w.ImprintBack,
		"company":          w.Company,
		"company_fuzzy":    w.CompanyFuzzy,
		"ingredient_exact": w.IngredientExact,
		"ingredient_fuzzy": w.IngredientFuzzy,
	}
	for name, v := range points {
		if v < 0 {
			return fmt.Errorf("%w: weight %s is negative", ErrInvalidInput, name)
		}
	}

	thresholds := map[string]float64{
		"name_fuzzy_threshold":       w.NameFuzzyThreshold,
		"alt_name_threshold":         w.AltNameThreshold,
		"company_fuzzy_threshold":    w.CompanyFuzzyThreshold,
		"ingredient_fuzzy_threshold": w.IngredientFuzzyThreshold,
	}
	for name, v := range thresholds {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1]", ErrInvalidInput, name)
		}
	}
	return nil
}
