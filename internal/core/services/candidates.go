package services

import (
	"context"
	"sort"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure CandidateSearchService implements the interface.
var _ driving.CandidateSearch = (*CandidateSearchService)(nil)

// minQueryToken is the shortest token or imprint run used as a catalog query.
const minQueryToken = 2

// CandidateSearchService identifies medicines from OCR text by querying the
// catalog by name tokens and imprint runs, then scoring every hit.
type CandidateSearchService struct {
	catalog   driving.CatalogService
	scorer    driving.MatchScorer
	topN      int
	nameLimit int
}

// NewCandidateSearchService creates a candidate search.
// A non-positive topN falls back to domain.DefaultTopN.
func NewCandidateSearchService(
	catalog driving.CatalogService,
	scorer driving.MatchScorer,
	topN int,
) *CandidateSearchService {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	return &CandidateSearchService{
		catalog:   catalog,
		scorer:    scorer,
		topN:      topN,
		nameLimit: DefaultNameLimit,
	}
}

// Search returns the best matching records for extractedText.
func (s *CandidateSearchService) Search(ctx context.Context, extractedText string) []domain.MatchCandidate {
	logger.Section("Candidate Search")

	if s.catalog == nil || !s.catalog.State().IsReady() {
		logger.Debug("Catalog not ready, returning no candidates")
		return []domain.MatchCandidate{}
	}

	text := normalizeText(extractedText)
	if text == "" {
		return []domain.MatchCandidate{}
	}

	ids := s.collect(ctx, text, extractedText)
	logger.Debug("Collected %d candidate ids", len(ids))

	candidates := make([]domain.MatchCandidate, 0, len(ids))
	for _, id := range ids {
		record, ok := s.catalog.GetByID(id)
		if !ok {
			continue
		}
		score := s.scorer.Score(extractedText, &record)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{Record: record, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > s.topN {
		candidates = candidates[:s.topN]
	}

	logger.Debug("Returning %d candidates", len(candidates))
	return candidates
}

// collect unions the ids found by name tokens and imprint runs, in
// encounter order.
func (s *CandidateSearchService) collect(ctx context.Context, text, raw string) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(records []domain.ReferenceRecord) {
		for i := range records {
			id := records[i].ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, tok := range tokens(text, minQueryToken) {
		if ctx.Err() != nil {
			return ids
		}
		add(s.catalog.FindByName(tok, s.nameLimit))
	}
	for _, run := range alnumRuns(raw, minQueryToken) {
		if ctx.Err() != nil {
			return ids
		}
		add(s.catalog.FindByImprint(run, ""))
	}
	return ids
}
