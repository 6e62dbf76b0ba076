package driving

import "github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"

// SettingsService reads and edits ~/.pillmate/config.toml on behalf of the
// settings command.
type SettingsService interface {
	// Get returns stored settings merged over the defaults.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	SetCatalogDir(dir string) error

	// SetSafetyBackend stores the backend and its location: a file path
	// for sqlite, a DSN for postgres, nothing for memory.
	SetSafetyBackend(backend domain.VectorBackend, location string) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks settings offline.
	Validate() error

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured providers.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
