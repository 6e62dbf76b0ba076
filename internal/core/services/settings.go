package services

import (
	"fmt"
	"slices"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCatalogDir        = "catalog.dir"
	keyCatalogWatch      = "catalog.watch"
	keySearchTopN        = "search.top_n"
	keySafetyBackend     = "safety.backend"
	keySafetyPath        = "safety.path"
	keySafetyCollection  = "safety.collection"
	keySafetyDSN         = "safety.dsn"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedCachePath    = "embedding.cache_path"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyScoringWeightsPfx = "scoring."

	defaultOllamaURL = "http://localhost:11434"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Catalog: domain.CatalogSettings{
			Dir:   s.configStore.GetString(keyCatalogDir),
			Watch: s.getBool(keyCatalogWatch, defaults.Catalog.Watch),
		},
		Search: domain.SearchSettings{
			TopN:    s.getInt(keySearchTopN, defaults.Search.TopN),
			Weights: s.getWeights(defaults.Search.Weights),
		},
		Safety: domain.SafetySettings{
			Backend:    s.getBackend(defaults.Safety.Backend),
			Path:       s.configStore.GetString(keySafetyPath),
			Collection: s.getString(keySafetyCollection, defaults.Safety.Collection),
			DSN:        s.configStore.GetString(keySafetyDSN),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:     s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:    s.configStore.GetString(keyEmbedAPIKey),
			CachePath: s.configStore.GetString(keyEmbedCachePath),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyCatalogDir, settings.Catalog.Dir},
		{keyCatalogWatch, settings.Catalog.Watch},
		{keySearchTopN, settings.Search.TopN},
		{keySafetyBackend, settings.Safety.Backend.String()},
		{keySafetyPath, settings.Safety.Path},
		{keySafetyCollection, settings.Safety.Collection},
		{keySafetyDSN, settings.Safety.DSN},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedCachePath, settings.Embedding.CachePath},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so an empty form never wipes them.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	if settings.Search.Weights != domain.DefaultScoreWeights() {
		for name, value := range weightFields(&settings.Search.Weights) {
			if err := s.configStore.Set(keyScoringWeightsPfx+name, *value); err != nil {
				return fmt.Errorf("save scoring.%s: %w", name, err)
			}
		}
	}

	return nil
}

// SetCatalogDir updates the reference dataset directory.
func (s *SettingsService) SetCatalogDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: catalog directory is empty", domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Catalog.Dir = dir
	return s.Save(settings)
}

// SetSafetyBackend configures where the safety index lives. location is a
// file path for sqlite and a DSN for postgres.
func (s *SettingsService) SetSafetyBackend(backend domain.VectorBackend, location string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid safety backend: %s", backend)
	}
	if backend == domain.VectorBackendPostgres && location == "" {
		return fmt.Errorf("DSN required for %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Safety.Backend = backend
	switch backend {
	case domain.VectorBackendPostgres:
		settings.Safety.DSN = location
	case domain.VectorBackendSQLite:
		settings.Safety.Path = location
	}
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(providerSlot{
		kind:      "embedding",
		supported: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		fields: func(a *domain.AppSettings) (*domain.AIProvider, *string, *string, *string) {
			e := &a.Embedding
			return &e.Provider, &e.Model, &e.BaseURL, &e.APIKey
		},
	}, provider, model, apiKey)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(providerSlot{
		kind:      "LLM",
		supported: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		fields: func(a *domain.AppSettings) (*domain.AIProvider, *string, *string, *string) {
			l := &a.LLM
			return &l.Provider, &l.Model, &l.BaseURL, &l.APIKey
		},
	}, provider, model, apiKey)
}

// providerSlot is the embedding or LLM section as seen by setProvider.
type providerSlot struct {
	kind      string
	supported []domain.AIProvider
	models    map[domain.AIProvider]string
	// fields returns the provider, model, base URL and API key fields.
	fields func(*domain.AppSettings) (*domain.AIProvider, *string, *string, *string)
}

// setProvider stores provider with model, or the provider's default model
// when model is empty. Ollama keeps a configured base URL; other providers
// clear it.
func (s *SettingsService) setProvider(slot providerSlot, provider domain.AIProvider, model, apiKey string) error {
	switch {
	case !provider.IsValid():
		return fmt.Errorf("%w: unknown %s provider %q", domain.ErrInvalidInput, slot.kind, provider)
	case !slices.Contains(slot.supported, provider):
		return fmt.Errorf("%w: %s cannot serve as %s provider", domain.ErrInvalidInput, provider, slot.kind)
	case provider.RequiresAPIKey() && apiKey == "":
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	p, m, baseURL, key := slot.fields(settings)

	*p = provider
	if model == "" {
		model = slot.models[provider]
	}
	if model != "" {
		*m = model
	}
	switch {
	case provider != domain.AIProviderOllama:
		*baseURL = ""
	case *baseURL == "":
		*baseURL = defaultOllamaURL
	}
	*key = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Search.TopN <= 0 {
		return fmt.Errorf("search.top_n must be positive, got %d", settings.Search.TopN)
	}
	if err := settings.Search.Weights.Validate(); err != nil {
		return err
	}
	if settings.Safety.Backend == domain.VectorBackendPostgres && settings.Safety.DSN == "" {
		return fmt.Errorf("safety backend %q requires safety.dsn", settings.Safety.Backend)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not fully configured", settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	if v := s.configStore.GetFloat(key); v != 0 {
		return v
	}
	// GetFloat reports 0 for non-numeric values too; only a stored zero counts.
	switch raw.(type) {
	case int, int64, float64:
		return 0
	}
	return defaultVal
}

func (s *SettingsService) getWeights(defaults domain.ScoreWeights) domain.ScoreWeights {
	w := defaults
	for name, field := range weightFields(&w) {
		*field = s.getFloat(keyScoringWeightsPfx+name, *field)
	}
	return w
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.configStore.GetString(keySafetyBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.VectorBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// weightFields maps config key suffixes to the fields of w.
func weightFields(w *domain.ScoreWeights) map[string]*float64 {
	return map[string]*float64{
		"name_exact":                 &w.NameExact,
		"name_base":                  &w.NameBase,
		"dose_bonus":                 &w.DoseBonus,
		"name_fuzzy":                 &w.NameFuzzy,
		"name_fuzzy_threshold":       &w.NameFuzzyThreshold,
		"alt_name":                   &w.AltName,
		"alt_name_threshold":         &w.AltNameThreshold,
		"imprint_front":              &w.ImprintFront,
		"imprint_back":               &w.ImprintBack,
		"company":                    &w.Company,
		"company_fuzzy":              &w.CompanyFuzzy,
		"company_fuzzy_threshold":    &w.CompanyFuzzyThreshold,
		"ingredient_exact":           &w.IngredientExact,
		"ingredient_fuzzy":           &w.IngredientFuzzy,
		"ingredient_fuzzy_threshold": &w.IngredientFuzzyThreshold,
	}
}
