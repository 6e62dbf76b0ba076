package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// MockCatalogService implements driving.CatalogService for testing.
type MockCatalogService struct {
	Status  domain.CatalogState
	Records []domain.ReferenceRecord
}

func (m *MockCatalogService) Load(_ context.Context) domain.LoadResult {
	return domain.LoadResult{State: m.Status, Records: len(m.Records)}
}

func (m *MockCatalogService) Reload(ctx context.Context) domain.LoadResult {
	return m.Load(ctx)
}

func (m *MockCatalogService) State() domain.CatalogState { return m.Status }

func (m *MockCatalogService) Count() int { return len(m.Records) }

func (m *MockCatalogService) FindByName(_ string, _ int) []domain.ReferenceRecord {
	return m.Records
}

func (m *MockCatalogService) FindByImprint(_, _ string) []domain.ReferenceRecord {
	return nil
}

func (m *MockCatalogService) GetByID(id string) (domain.ReferenceRecord, bool) {
	for _, r := range m.Records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.ReferenceRecord{}, false
}

// MockCandidateSearch implements driving.CandidateSearch for testing.
type MockCandidateSearch struct {
	SearchFunc func(ctx context.Context, text string) []domain.MatchCandidate
}

func (m *MockCandidateSearch) Search(ctx context.Context, text string) []domain.MatchCandidate {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, text)
	}
	return []domain.MatchCandidate{}
}

// MockSafetyRetriever implements driving.SafetyRetriever for testing.
type MockSafetyRetriever struct {
	Report domain.SafetyReport
}

func (m *MockSafetyRetriever) SearchByDrugNames(
	_ context.Context, _ []string, _ domain.SafetyCategory, _ int,
) domain.SafetyResult {
	return domain.SafetyResult{Documents: []domain.SafetyDocument{}}
}

func (m *MockSafetyRetriever) SearchAllCategories(_ context.Context, _ []string) domain.SafetyReport {
	return m.Report
}

func (m *MockSafetyRetriever) SearchByQuestion(
	_ context.Context, _ string, _ int,
) ([]domain.SafetyDocument, error) {
	return nil, nil
}

func TestNewPorts(t *testing.T) {
	catalog := &MockCatalogService{}
	candidates := &MockCandidateSearch{}
	safety := &MockSafetyRetriever{}

	ports := NewPorts(catalog, candidates, safety)

	assert.Equal(t, catalog, ports.Catalog)
	assert.Equal(t, candidates, ports.Candidates)
	assert.Equal(t, safety, ports.Safety)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:  "all set",
			ports: NewPorts(&MockCatalogService{}, &MockCandidateSearch{}, &MockSafetyRetriever{}),
		},
		{
			name:  "safety is optional",
			ports: NewPorts(&MockCatalogService{}, &MockCandidateSearch{}, nil),
		},
		{
			name:    "missing catalog",
			ports:   &Ports{Candidates: &MockCandidateSearch{}},
			wantErr: ErrMissingCatalogService,
		},
		{
			name:    "missing candidates",
			ports:   &Ports{Catalog: &MockCatalogService{}},
			wantErr: ErrMissingCandidateSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
