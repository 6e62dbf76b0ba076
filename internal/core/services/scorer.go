package services

import (
	"math"
	"strings"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
)

// Ensure Scorer implements the interface.
var _ driving.MatchScorer = (*Scorer)(nil)

// minNameToken is the shortest token compared against names and companies.
const minNameToken = 2

// minIngredientToken is the shortest token compared against ingredients.
const minIngredientToken = 3

// Scorer computes how well extracted text matches a reference record.
// The score is a weighted sum of name, imprint, company and ingredient
// evidence divided by 100 and clamped to 1.
type Scorer struct {
	weights domain.ScoreWeights
}

// NewScorer creates a scorer with the given weight policy.
func NewScorer(weights domain.ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Weights returns the scorer's weight policy.
func (s *Scorer) Weights() domain.ScoreWeights {
	return s.weights
}

// Score returns the match confidence of extractedText against record in [0, 1].
func (s *Scorer) Score(extractedText string, record *domain.ReferenceRecord) float64 {
	if record == nil {
		return 0
	}
	text := normalizeText(extractedText)
	if text == "" {
		return 0
	}

	m := matchInput{
		text:       text,
		upper:      strings.ToUpper(text),
		nameTokens: tokens(text, minNameToken),
		ingrTokens: tokens(text, minIngredientToken),
	}

	sum := s.nameScore(&m, record) +
		s.imprintScore(&m, record) +
		s.companyScore(&m, record) +
		s.ingredientScore(&m, record)

	return math.Min(sum/100, 1)
}

// matchInput is the extracted text prepared once per Score call.
type matchInput struct {
	text       string
	upper      string
	nameTokens []string
	ingrTokens []string
}

func (s *Scorer) nameScore(m *matchInput, r *domain.ReferenceRecord) float64 {
	w := s.weights
	full := cleanName(r.Name)
	base := baseName(full)

	var points float64
	switch {
	case containsName(m.text, full):
		points = w.NameExact + s.doseBonus(m.text, full)
	case base != full && containsName(m.text, base):
		points = w.NameBase + s.doseBonus(m.text, full)
	default:
		if best := bestSimilarity(m.nameTokens, base); best >= w.NameFuzzyThreshold {
			points = w.NameFuzzy * best
		}
	}

	if alt := cleanName(r.NameEn); alt != "" {
		best := bestSimilarity(m.nameTokens, alt)
		if stem := baseName(alt); stem != alt {
			best = math.Max(best, bestSimilarity(m.nameTokens, stem))
		}
		if best >= w.AltNameThreshold {
			points += w.AltName
		}
	}
	return points
}

// doseBonus corroborates a name hit when the text and the name share a number.
func (s *Scorer) doseBonus(text, name string) float64 {
	nameNumbers := numbers(name)
	if len(nameNumbers) == 0 {
		return 0
	}
	if intersects(numbers(text), nameNumbers) {
		return s.weights.DoseBonus
	}
	return 0
}

func (s *Scorer) imprintScore(m *matchInput, r *domain.ReferenceRecord) float64 {
	var points float64
	if domain.HasImprint(r.ImprintFront) &&
		strings.Contains(m.upper, strings.ToUpper(strings.TrimSpace(r.ImprintFront))) {
		points += s.weights.ImprintFront
	}
	if domain.HasImprint(r.ImprintBack) &&
		strings.Contains(m.upper, strings.ToUpper(strings.TrimSpace(r.ImprintBack))) {
		points += s.weights.ImprintBack
	}
	return points
}

func (s *Scorer) companyScore(m *matchInput, r *domain.ReferenceRecord) float64 {
	if company := cleanName(r.Company); company != "" && containsName(m.text, company) {
		return s.weights.Company
	}
	if companyEn := cleanName(r.CompanyEn); companyEn != "" {
		if bestSimilarity(m.nameTokens, companyEn) >= s.weights.CompanyFuzzyThreshold {
			return s.weights.CompanyFuzzy
		}
	}
	return 0
}

func (s *Scorer) ingredientScore(m *matchInput, r *domain.ReferenceRecord) float64 {
	for _, ingredient := range r.Ingredients {
		ing := cleanName(ingredient)
		if ing == "" {
			continue
		}
		if strings.Contains(m.text, ing) {
			return s.weights.IngredientExact
		}
		if bestSimilarity(m.ingrTokens, ing) >= s.weights.IngredientFuzzyThreshold {
			return s.weights.IngredientFuzzy
		}
	}
	return 0
}
