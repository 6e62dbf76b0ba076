package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	records []domain.ReferenceRecord
	state   domain.CatalogState

	lastLimit int
}

func (m *mockCatalogService) Load(_ context.Context) domain.LoadResult {
	return domain.LoadResult{State: m.state, Records: len(m.records)}
}

func (m *mockCatalogService) Reload(ctx context.Context) domain.LoadResult {
	return m.Load(ctx)
}

func (m *mockCatalogService) State() domain.CatalogState {
	return m.state
}

func (m *mockCatalogService) Count() int {
	return len(m.records)
}

func (m *mockCatalogService) FindByName(query string, limit int) []domain.ReferenceRecord {
	m.lastLimit = limit
	var out []domain.ReferenceRecord
	for i := range m.records {
		if strings.Contains(m.records[i].Name, query) && len(out) < limit {
			out = append(out, m.records[i])
		}
	}
	return out
}

func (m *mockCatalogService) FindByImprint(front, back string) []domain.ReferenceRecord {
	var out []domain.ReferenceRecord
	for i := range m.records {
		if (front != "" && strings.EqualFold(m.records[i].ImprintFront, front)) ||
			(back != "" && strings.EqualFold(m.records[i].ImprintBack, back)) {
			out = append(out, m.records[i])
		}
	}
	return out
}

func (m *mockCatalogService) GetByID(id string) (domain.ReferenceRecord, bool) {
	for i := range m.records {
		if m.records[i].ID == id {
			return m.records[i], true
		}
	}
	return domain.ReferenceRecord{}, false
}

// mockCandidateSearch is a mock implementation of driving.CandidateSearch.
type mockCandidateSearch struct {
	candidates []domain.MatchCandidate
	lastText   string
}

func (m *mockCandidateSearch) Search(_ context.Context, text string) []domain.MatchCandidate {
	m.lastText = text
	if m.candidates == nil {
		return []domain.MatchCandidate{}
	}
	return m.candidates
}

// mockSafetyRetriever is a mock implementation of driving.SafetyRetriever.
type mockSafetyRetriever struct {
	result domain.SafetyResult
	report domain.SafetyReport

	lastNames    []string
	lastCategory domain.SafetyCategory
	lastK        int
}

func (m *mockSafetyRetriever) SearchByDrugNames(
	_ context.Context, names []string, category domain.SafetyCategory, k int,
) domain.SafetyResult {
	m.lastNames = names
	m.lastCategory = category
	m.lastK = k
	return m.result
}

func (m *mockSafetyRetriever) SearchAllCategories(_ context.Context, names []string) domain.SafetyReport {
	m.lastNames = names
	return m.report
}

func (m *mockSafetyRetriever) SearchByQuestion(
	_ context.Context, _ string, _ int,
) ([]domain.SafetyDocument, error) {
	return m.result.Documents, m.result.Err
}

// mockAdvisor is a mock implementation of driving.SafetyAdvisor.
type mockAdvisor struct {
	answer *domain.SafetyAnswer
	err    error
}

func (m *mockAdvisor) Ask(_ context.Context, _ string) (*domain.SafetyAnswer, error) {
	return m.answer, m.err
}

// mockRegimen is a mock implementation of driving.RegimenAnalyzer.
type mockRegimen struct {
	analysis *domain.RegimenAnalysis
	err      error
}

func (m *mockRegimen) Analyze(_ context.Context, _ []string) (*domain.RegimenAnalysis, error) {
	return m.analysis, m.err
}

func testRecords() []domain.ReferenceRecord {
	return []domain.ReferenceRecord{
		{
			ID:           "200808876",
			Name:         "타이레놀정500밀리그람",
			NameEn:       "Tylenol Tab. 500mg",
			Company:      "한국얀센",
			Ingredients:  []string{"아세트아미노펜"},
			ImprintFront: "TYLENOL",
			ImprintBack:  "500",
		},
		{
			ID:           "199303108",
			Name:         "부루펜정200밀리그램",
			Company:      "삼일제약",
			Ingredients:  []string{"이부프로펜"},
			ImprintFront: "IBU",
		},
	}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func basePorts() *Ports {
	return &Ports{
		Catalog:    &mockCatalogService{records: testRecords(), state: domain.CatalogReady},
		Candidates: &mockCandidateSearch{},
	}
}
