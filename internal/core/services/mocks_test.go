package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockReferenceSource implements driven.ReferenceSource for testing.
type mockReferenceSource struct {
	batch *domain.SourceBatch
	err   error
	reads int
}

func (m *mockReferenceSource) Read(_ context.Context) (*domain.SourceBatch, error) {
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	return m.batch, nil
}

func (m *mockReferenceSource) Location() string {
	return "mock://reference"
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors are derived from text length so they are deterministic.
type mockEmbeddingService struct {
	mu         sync.Mutex
	embedErr   error
	batchErr   error
	failTexts  map[string]bool
	embedCalls int
	batchCalls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failTexts[text] {
		return nil, errors.New("embed failed")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	batchErr := m.batchErr
	m.mu.Unlock()
	if batchErr != nil {
		return nil, batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(context.Background(), t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return 3 }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	mu        sync.Mutex
	docs      []domain.SafetyDocument
	results   []domain.SafetyDocument
	searchErr error
	addErr    error
	searches  []searchCall
	closed    bool
}

type searchCall struct {
	k      int
	filter *driven.SearchFilter
}

func (m *mockVectorStore) Add(_ context.Context, docs []domain.SafetyDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *mockVectorStore) Search(
	_ context.Context, _ []float32, k int, filter *driven.SearchFilter,
) ([]domain.SafetyDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, searchCall{k: k, filter: filter})
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []domain.SafetyDocument
	for i := range m.results {
		if filter.Matches(&m.results[i]) {
			out = append(out, m.results[i])
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

func (m *mockVectorStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	return nil
}

func (m *mockVectorStore) Close() error {
	m.closed = true
	return nil
}

// failingStore fails searches for one category only.
type failingStore struct {
	mockVectorStore
	failCategory domain.SafetyCategory
}

func (f *failingStore) Search(
	ctx context.Context, q []float32, k int, filter *driven.SearchFilter,
) ([]domain.SafetyDocument, error) {
	if filter != nil && filter.Category == f.failCategory {
		return nil, errors.New("index shard offline")
	}
	return f.mockVectorStore.Search(ctx, q, k, filter)
}

// mockBackends implements driven.SafetyBackends for testing.
type mockBackends struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	err      error
	calls    int
}

func (m *mockBackends) Backends(_ context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
	m.calls++
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.embedder, m.store, nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	data    map[string]any
	setErr  error
	saveErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.data[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.data[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.data[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return m.saveErr }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "/mock/config.toml" }

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return m.embedErr }
func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error             { return m.llmErr }

// --- Fixtures ---

func record(id, name string, mutate ...func(*domain.ReferenceRecord)) domain.ReferenceRecord {
	r := domain.ReferenceRecord{ID: id, Name: name}
	for _, m := range mutate {
		m(&r)
	}
	return r
}

func withImprint(front, back string) func(*domain.ReferenceRecord) {
	return func(r *domain.ReferenceRecord) {
		r.ImprintFront = front
		r.ImprintBack = back
	}
}

func withNameEn(nameEn string) func(*domain.ReferenceRecord) {
	return func(r *domain.ReferenceRecord) { r.NameEn = nameEn }
}

func withCompany(company, companyEn string) func(*domain.ReferenceRecord) {
	return func(r *domain.ReferenceRecord) {
		r.Company = company
		r.CompanyEn = companyEn
	}
}

func withIngredients(raw string) func(*domain.ReferenceRecord) {
	return func(r *domain.ReferenceRecord) { r.Ingredients = domain.ParseIngredients(raw) }
}

func loadedCatalog(records ...domain.ReferenceRecord) *CatalogService {
	c := NewCatalogService(&mockReferenceSource{
		batch: &domain.SourceBatch{Records: records, Files: 1},
	})
	c.Load(context.Background())
	return c
}

func safetyDoc(id string, category domain.SafetyCategory, drugA, drugB string) domain.SafetyDocument {
	return domain.SafetyDocument{
		ID:            id,
		Category:      category,
		PrimaryDrug:   drugA,
		SecondaryDrug: drugB,
		Content:       strings.TrimSpace(category.Label() + " " + drugA + " " + drugB),
	}
}
