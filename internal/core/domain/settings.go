package domain

import "slices"

const unknownDescription = "Unknown"

// AIProvider names a service that embeds text, generates text or both.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderLocal is the built-in hashing embedder. It needs no network.
	AIProviderLocal AIProvider = "local"
)

func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderLocal:
		return true
	}
	return false
}

// RequiresAPIKey is true for the cloud providers.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

func (p AIProvider) String() string { return string(p) }

// Description is the label shown in settings menus.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local server)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderLocal:
		return "Built-in hashing embedder (offline)"
	}
	return unknownDescription
}

// VectorBackend selects the storage behind the safety index.
type VectorBackend string

const (
	VectorBackendSQLite   VectorBackend = "sqlite"   // local file, the default
	VectorBackendMemory   VectorBackend = "memory"   // lost on exit
	VectorBackendPostgres VectorBackend = "postgres" // pgvector
)

func (b VectorBackend) IsValid() bool {
	return b == VectorBackendSQLite || b == VectorBackendMemory || b == VectorBackendPostgres
}

func (b VectorBackend) String() string { return string(b) }

// CatalogSettings is the [catalog] section.
type CatalogSettings struct {
	Dir   string // directory of reference dataset JSON files
	Watch bool   // reload when files in Dir change
}

// SearchSettings is the [search] section plus the [scoring] weights.
type SearchSettings struct {
	TopN    int
	Weights ScoreWeights
}

// SafetySettings is the [safety] section. Path applies to the sqlite
// backend and DSN to postgres.
type SafetySettings struct {
	Backend    VectorBackend
	Path       string
	Collection string
	DSN        string
}

// EmbeddingSettings is the [embedding] section. BaseURL is only read for
// Ollama; CachePath names a bbolt file of query vectors and is optional.
type EmbeddingSettings struct {
	Provider  AIProvider
	Model     string
	BaseURL   string
	APIKey    string
	CachePath string
}

// IsConfigured reports whether Provider can embed and has its key.
func (e EmbeddingSettings) IsConfigured() bool {
	return slices.Contains(AllEmbeddingProviders(), e.Provider) &&
		(!e.Provider.RequiresAPIKey() || e.APIKey != "")
}

// LLMSettings is the [llm] section. The zero value means no LLM.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured reports whether Provider can generate text and has its key.
func (l LLMSettings) IsConfigured() bool {
	return slices.Contains(AllLLMProviders(), l.Provider) &&
		(!l.Provider.RequiresAPIKey() || l.APIKey != "")
}

// AppSettings mirrors ~/.pillmate/config.toml.
type AppSettings struct {
	Catalog   CatalogSettings
	Search    SearchSettings
	Safety    SafetySettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

const (
	// DefaultTopN is how many candidates a search returns.
	DefaultTopN = 10

	// DefaultCollection names the safety collection in every backend.
	DefaultCollection = "dur_safety"
)

// DefaultAppSettings works offline: a sqlite index built with the hashing
// embedder and no LLM.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{TopN: DefaultTopN, Weights: DefaultScoreWeights()},
		Safety: SafetySettings{Backend: VectorBackendSQLite, Collection: DefaultCollection},
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
		},
	}
}

// AllEmbeddingProviders lists the providers that can embed, in menu order.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderLocal, AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders lists the providers that can generate text, in menu order.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// DefaultEmbeddingModels maps each embedding provider to its default model.
// Both remote defaults are multilingual, which Korean drug names need.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-trigram-512",
		AIProviderOllama: "bge-m3",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions gives the vector width of known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-trigram-512":    512,
		"bge-m3":                 1024,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
