package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

func newSearch(c *CatalogService, topN int) *CandidateSearchService {
	return NewCandidateSearchService(c, NewScorer(domain.DefaultScoreWeights()), topN)
}

func TestCandidateSearch_AcetaminophenScenario(t *testing.T) {
	c := loadedCatalog(record("1", "Acetaminophen Tablet 500mg", withImprint("AC500", "")))

	got := newSearch(c, 10).Search(context.Background(), "ACETAMINOPHEN TABLET 500MG AC500")

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Record.ID)
	assert.GreaterOrEqual(t, got[0].Score, 0.9)
}

func TestCandidateSearch_TylenolScenario(t *testing.T) {
	c := loadedCatalog(
		record("er", "Tylenol-ER", withImprint("TYER", "")),
		record("plain", "Tylenol", withImprint("TY", "")),
	)

	got := newSearch(c, 10).Search(context.Background(), "tylenol")

	require.Len(t, got, 2)
	for _, cand := range got {
		assert.Greater(t, cand.Score, 0.0)
	}
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestCandidateSearch_FindsByImprintRun(t *testing.T) {
	c := loadedCatalog(
		record("1", "게보린정", withImprint("GB", "없음")),
		record("2", "타이레놀정", withImprint("TY", "500")),
	)

	got := newSearch(c, 10).Search(context.Background(), "흰색 원형 GB")

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Record.ID)
	assert.InDelta(t, 0.125, got[0].Score, 1e-9)
}

func TestCandidateSearch_OrderedAndTruncated(t *testing.T) {
	c := loadedCatalog(
		record("weak", "펜잘큐정", withImprint("PZ", "")),
		record("strong", "펜잘정500", withImprint("PZ", "500")),
		record("mid", "펜잘이알정", withImprint("PZ", "ER")),
	)

	got := newSearch(c, 2).Search(context.Background(), "펜잘정500 PZ 500")

	require.Len(t, got, 2)
	assert.Equal(t, "strong", got[0].Record.ID)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestCandidateSearch_NoDuplicateRecords(t *testing.T) {
	c := loadedCatalog(record("1", "게보린정", withImprint("GB", "")))

	got := newSearch(c, 10).Search(context.Background(), "게보린정 게보린정 GB GB")

	assert.Len(t, got, 1)
}

func TestCandidateSearch_EmptyCases(t *testing.T) {
	t.Run("unloaded catalog", func(t *testing.T) {
		c := NewCatalogService(&mockReferenceSource{})
		got := newSearch(c, 10).Search(context.Background(), "타이레놀")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("blank text", func(t *testing.T) {
		c := loadedCatalog(sampleRecords()...)
		assert.Empty(t, newSearch(c, 10).Search(context.Background(), "   "))
	})

	t.Run("nothing matches", func(t *testing.T) {
		c := loadedCatalog(sampleRecords()...)
		assert.Empty(t, newSearch(c, 10).Search(context.Background(), "zz qq"))
	})

	t.Run("garbage text", func(t *testing.T) {
		c := loadedCatalog(sampleRecords()...)
		search := newSearch(c, 10)
		for _, text := range []string{
			"",
			"\n\n\t",
			"!@#$%^&*() ,.;:",
			"\x00\x07\x1b[31m\u200b\u202e\ufeff",
			"\xff\xfe",
			"(((( ))))",
		} {
			assert.NotPanics(t, func() {
				got := search.Search(context.Background(), text)
				assert.LessOrEqual(t, len(got), 10)
			}, "%q", text)
		}
	})

	t.Run("nil catalog", func(t *testing.T) {
		s := NewCandidateSearchService(nil, NewScorer(domain.DefaultScoreWeights()), 0)
		assert.Empty(t, s.Search(context.Background(), "타이레놀"))
	})
}

func TestNewCandidateSearchService_DefaultTopN(t *testing.T) {
	s := NewCandidateSearchService(nil, nil, 0)
	assert.Equal(t, domain.DefaultTopN, s.topN)
}
