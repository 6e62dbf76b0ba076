package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// mockCatalogService implements driving.CatalogService for testing.
type mockCatalogService struct {
	records []domain.ReferenceRecord
	state   domain.CatalogState
	reloads int
	loads   int
}

func (m *mockCatalogService) Load(_ context.Context) domain.LoadResult {
	m.loads++
	return domain.LoadResult{State: m.state, Records: len(m.records), Files: 1}
}

func (m *mockCatalogService) Reload(ctx context.Context) domain.LoadResult {
	m.reloads++
	return m.Load(ctx)
}

func (m *mockCatalogService) State() domain.CatalogState { return m.state }

func (m *mockCatalogService) Count() int { return len(m.records) }

func (m *mockCatalogService) FindByName(query string, limit int) []domain.ReferenceRecord {
	var out []domain.ReferenceRecord
	for _, r := range m.records {
		if strings.Contains(r.Name, query) || strings.Contains(r.Company, query) {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func (m *mockCatalogService) FindByImprint(front, back string) []domain.ReferenceRecord {
	var out []domain.ReferenceRecord
	for _, r := range m.records {
		if front != "" && !strings.EqualFold(r.ImprintFront, front) {
			continue
		}
		if back != "" && !strings.EqualFold(r.ImprintBack, back) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *mockCatalogService) GetByID(id string) (domain.ReferenceRecord, bool) {
	for _, r := range m.records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.ReferenceRecord{}, false
}

// mockCandidateSearch implements driving.CandidateSearch for testing.
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

// mockSafetyRetriever implements driving.SafetyRetriever for testing.
type mockSafetyRetriever struct {
	result       domain.SafetyResult
	report       domain.SafetyReport
	questionDocs []domain.SafetyDocument
	questionErr  error

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
	_ context.Context, _ string, k int,
) ([]domain.SafetyDocument, error) {
	m.lastK = k
	return m.questionDocs, m.questionErr
}

// mockAdvisor implements driving.SafetyAdvisor for testing.
type mockAdvisor struct {
	answer *domain.SafetyAnswer
	err    error
}

func (m *mockAdvisor) Ask(_ context.Context, _ string) (*domain.SafetyAnswer, error) {
	return m.answer, m.err
}

// mockRegimen implements driving.RegimenAnalyzer for testing.
type mockRegimen struct {
	analysis *domain.RegimenAnalysis
	err      error
}

func (m *mockRegimen) Analyze(_ context.Context, _ []string) (*domain.RegimenAnalysis, error) {
	return m.analysis, m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetCatalogDir(dir string) error {
	if dir == "" {
		return errors.New("empty")
	}
	m.settings.Catalog.Dir = dir
	return nil
}

func (m *mockSettingsService) SetSafetyBackend(backend domain.VectorBackend, location string) error {
	m.settings.Safety.Backend = backend
	m.settings.Safety.Path = location
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

func testRecords() []domain.ReferenceRecord {
	return []domain.ReferenceRecord{
		{
			ID:           "200808876",
			Name:         "타이레놀정500밀리그람",
			NameEn:       "Tylenol Tab. 500mg",
			Company:      "한국얀센",
			Ingredients:  []string{"아세트아미노펜"},
			Shape:        "장방형",
			Color:        "하양",
			ImprintFront: "TYLENOL",
			ImprintBack:  "500",
		},
		{
			ID:           "199303108",
			Name:         "부루펜정200밀리그램",
			Company:      "삼일제약",
			Ingredients:  []string{"이부프로펜"},
			ImprintFront: "IBU",
			ImprintBack:  domain.NoImprintMarker,
		},
	}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	catalog    *mockCatalogService
	candidates *mockCandidateSearch
	safety     *mockSafetyRetriever
	advisor    *mockAdvisor
	regimen    *mockRegimen
	settings   *mockSettingsService
}

// setupTestServices installs mock services and returns them with a cleanup
// function restoring the previous ones.
func setupTestServices() (*testServices, func()) {
	prev := &Services{
		Catalog:    catalogService,
		Candidates: candidateSearch,
		Safety:     safetyRetriever,
		Advisor:    safetyAdvisor,
		Regimen:    regimenAnalyzer,
		Settings:   settingsService,
		Indexer:    indexerFactory,
		Watcher:    catalogWatcher,
	}

	ts := &testServices{
		catalog:    &mockCatalogService{records: testRecords(), state: domain.CatalogReady},
		candidates: &mockCandidateSearch{},
		safety:     &mockSafetyRetriever{},
		advisor:    &mockAdvisor{},
		regimen:    &mockRegimen{},
		settings:   &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(&Services{
		Catalog:    ts.catalog,
		Candidates: ts.candidates,
		Safety:     ts.safety,
		Advisor:    ts.advisor,
		Regimen:    ts.regimen,
		Settings:   ts.settings,
	})

	return ts, func() { SetServices(prev) }
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables to their defaults between runs.
func resetFlags() {
	identifyLimit = 0
	identifyJSON = false
	catalogFindLimit = 10
	catalogJSON = false
	catalogImprintFront = ""
	catalogImprintBack = ""
	safetyCategory = "contraindication"
	safetyDrugsK = 0
	safetyQuestionK = domain.DefaultQuestionK
	safetyJSON = false
	analyzeJSON = false
	ingestManifest = ""
	ingestFile = ""
	ingestCategory = ""
	ingestEncoding = "cp949"
	ingestLimit = 0
	ingestReset = false
}
