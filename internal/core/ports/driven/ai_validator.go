package driven

import "github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"

// AIConfigValidator checks that provider settings reach a working service.
// An unconfigured provider is not an error.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error
}
