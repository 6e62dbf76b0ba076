package domain

// RiskLevel grades the combined risk of a set of medicines taken together.
type RiskLevel string

// Available risk levels.
const (
	RiskSafe   RiskLevel = "SAFE"
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AssessRisk grades a regimen from its duplicate-ingredient and interaction counts.
func AssessRisk(duplicates, interactions int) RiskLevel {
	switch {
	case duplicates >= 3 || interactions >= 2:
		return RiskHigh
	case duplicates >= 2 || interactions >= 1:
		return RiskMedium
	case duplicates >= 1:
		return RiskLow
	default:
		return RiskSafe
	}
}

// DuplicateIngredient is an ingredient present in more than one medicine.
type DuplicateIngredient struct {
	// Ingredient is the shared ingredient name.
	Ingredient string

	// Medicines are the names of the medicines containing it.
	Medicines []string
}

// RegimenAnalysis is the safety analysis of medicines taken together.
type RegimenAnalysis struct {
	// Medicines are the input names as given.
	Medicines []string

	// Resolved maps an input name to the catalog record it resolved to.
	Resolved map[string]ReferenceRecord

	// Duplicates lists ingredients shared between medicines.
	Duplicates []DuplicateIngredient

	// Interactions are contraindication documents naming two drugs of the regimen.
	Interactions []SafetyDocument

	// Safety holds the retrieved safety documents per category.
	Safety SafetyReport

	// Risk is the overall risk grade.
	Risk RiskLevel
}
