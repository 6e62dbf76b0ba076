package domain

// SafetyCategory identifies the kind of drug-safety restriction a document describes.
// The string value is the metadata tag stored with every indexed document.
type SafetyCategory string

// Available safety categories.
const (
	// CategoryContraindication is a drug-drug co-administration contraindication.
	CategoryContraindication SafetyCategory = "contraindication"

	// CategoryAgeRestriction is an age-based contraindication.
	CategoryAgeRestriction SafetyCategory = "age_restriction"

	// CategoryPregnancyRestriction is a pregnancy contraindication.
	CategoryPregnancyRestriction SafetyCategory = "pregnancy_restriction"

	// CategoryElderlyCaution is a caution for elderly patients.
	CategoryElderlyCaution SafetyCategory = "elderly_caution"
)

// AllSafetyCategories returns every category in report order.
func AllSafetyCategories() []SafetyCategory {
	return []SafetyCategory{
		CategoryContraindication,
		CategoryAgeRestriction,
		CategoryPregnancyRestriction,
		CategoryElderlyCaution,
	}
}

// ParseSafetyCategory maps a tag or a common alias to a category.
func ParseSafetyCategory(s string) (SafetyCategory, bool) {
	switch s {
	case "contraindication", "interaction":
		return CategoryContraindication, true
	case "age_restriction", "age_contraindication", "age":
		return CategoryAgeRestriction, true
	case "pregnancy_restriction", "pregnancy_contraindication", "pregnancy":
		return CategoryPregnancyRestriction, true
	case "elderly_caution", "elderly":
		return CategoryElderlyCaution, true
	default:
		return "", false
	}
}

// IsValid returns true if the category is recognised.
func (c SafetyCategory) IsValid() bool {
	switch c {
	case CategoryContraindication, CategoryAgeRestriction,
		CategoryPregnancyRestriction, CategoryElderlyCaution:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c SafetyCategory) String() string {
	return string(c)
}

// Label returns the dataset label used in rendered documents and query strings.
func (c SafetyCategory) Label() string {
	switch c {
	case CategoryContraindication:
		return "병용금기"
	case CategoryAgeRestriction:
		return "연령금기"
	case CategoryPregnancyRestriction:
		return "임부금기"
	case CategoryElderlyCaution:
		return "노인주의"
	default:
		return unknownDescription
	}
}

// Description returns a human-readable description of the category.
func (c SafetyCategory) Description() string {
	switch c {
	case CategoryContraindication:
		return "Drug interaction contraindication"
	case CategoryAgeRestriction:
		return "Age restriction"
	case CategoryPregnancyRestriction:
		return "Pregnancy restriction"
	case CategoryElderlyCaution:
		return "Elderly caution"
	default:
		return unknownDescription
	}
}

// DefaultK returns how many documents a category contributes to a full report.
func (c SafetyCategory) DefaultK() int {
	if c == CategoryContraindication {
		return 5
	}
	return 3
}

// DefaultQuestionK is the result count for free-text questions when none is given.
const DefaultQuestionK = 5

// RawSafetyRow is one tabular row from a safety source file, before rendering.
type RawSafetyRow struct {
	// DrugA is the primary ingredient name.
	DrugA string

	// DrugB is the secondary ingredient name (contraindication rows only).
	DrugB string

	// ProductA is the primary product name.
	ProductA string

	// ProductB is the secondary product name (contraindication rows only).
	ProductB string

	// Restriction is the age limit or pregnancy grade, when the category has one.
	Restriction string

	// Detail is the free-text safety explanation.
	Detail string

	// NoticeDate is the publication date of the restriction, if present.
	NoticeDate string
}

// SafetyDocument is one indexed drug-safety record.
type SafetyDocument struct {
	// ID is the stable document identifier.
	ID string `json:"id"`

	// Category is the metadata tag used for filtering.
	Category SafetyCategory `json:"category"`

	// PrimaryDrug is the main ingredient the restriction applies to.
	PrimaryDrug string `json:"primary_drug"`

	// SecondaryDrug is the interacting ingredient (contraindication only).
	SecondaryDrug string `json:"secondary_drug,omitempty"`

	// PrimaryProduct is the product name for the primary drug.
	PrimaryProduct string `json:"primary_product,omitempty"`

	// SecondaryProduct is the product name for the secondary drug.
	SecondaryProduct string `json:"secondary_product,omitempty"`

	// Restriction is the age limit or pregnancy grade.
	Restriction string `json:"restriction,omitempty"`

	// Detail is the free-text safety explanation.
	Detail string `json:"detail"`

	// NoticeDate is the publication date of the restriction.
	NoticeDate string `json:"notice_date,omitempty"`

	// Content is the canonical text block that was embedded.
	Content string `json:"content"`

	// Embedding is the vector for Content. Empty on query results.
	Embedding []float32 `json:"-"`

	// Similarity is the cosine similarity to the query (query results only).
	Similarity float64 `json:"similarity,omitempty"`
}

// SafetyResult is the outcome of one retrieval call.
// Err is set when the backend failed; Documents is then empty.
type SafetyResult struct {
	Documents []SafetyDocument
	Err       error
}

// OrEmpty folds a failed result into an empty document list.
func (r SafetyResult) OrEmpty() []SafetyDocument {
	if r.Err != nil || r.Documents == nil {
		return []SafetyDocument{}
	}
	return r.Documents
}

// SafetyReport maps every category to its retrieved documents.
type SafetyReport map[SafetyCategory][]SafetyDocument

// Total returns the number of documents across all categories.
func (r SafetyReport) Total() int {
	n := 0
	for _, docs := range r {
		n += len(docs)
	}
	return n
}

// SafetyAnswer is a generated answer grounded on retrieved safety documents.
type SafetyAnswer struct {
	// Question is the user question.
	Question string

	// Answer is the generated text.
	Answer string

	// Sources are the documents given to the generator as context.
	Sources []SafetyDocument
}
