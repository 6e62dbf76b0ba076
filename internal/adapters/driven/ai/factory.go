// Package ai turns settings into embedding and LLM adapters and into the
// safety index backends built on them.
package ai

import (
	"context"
	"fmt"
	"time"

	embedcache "github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/embedding/cache"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/llm/ollama"
	openaillm "github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/llm/openai"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

const (
	// pingTimeout bounds a connectivity check against a provider.
	pingTimeout = 5 * time.Second

	// openAIRequestsPerSecond keeps bulk ingest under the default OpenAI
	// tier limits.
	openAIRequestsPerSecond = 5
)

// EmbeddingRateLimit is the request rate ingest should hold to for the
// configured embedding provider. Zero means unlimited.
func EmbeddingRateLimit(settings *domain.EmbeddingSettings) float64 {
	if settings != nil && settings.Provider == domain.AIProviderOpenAI {
		return openAIRequestsPerSecond
	}
	return 0
}

// CreateAndValidateEmbeddingService is CreateEmbeddingService followed by a
// ping. Every failure, including a missing provider, wraps
// domain.ErrEmbeddingUnavailable.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	const hint = "run 'pillmate settings embedding' to fix"

	svc, err := CreateEmbeddingService(settings)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrEmbeddingUnavailable, err, hint)
	case svc == nil:
		return nil, fmt.Errorf("%w: no embedding provider configured; %s", domain.ErrEmbeddingUnavailable, hint)
	}

	if err := ping(ctx, svc, pingTimeout); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrEmbeddingUnavailable, err, hint)
	}
	return svc, nil
}

// CreateEmbeddingService builds the embedder named by settings, or returns
// nil when settings do not name a usable one. Remote embedders are wrapped
// in the bbolt query cache when CachePath is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use local, ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	dims := domain.EmbeddingDimensions()[settings.Model]
	var remote driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderLocal:
		return hashing.NewEmbeddingService(dims), nil
	case domain.AIProviderOllama:
		remote = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		remote = svc
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	if settings.CachePath == "" {
		return remote, nil
	}
	cached, err := embedcache.New(settings.CachePath, remote)
	if err != nil {
		_ = remote.Close()
		return nil, err
	}
	return cached, nil
}

// CreateLLMService builds the LLM named by settings, or returns nil when
// no LLM is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return nonNil(openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))
	case domain.AIProviderAnthropic:
		return nonNil(anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
}

// nonNil keeps a failed constructor's nil pointer out of the interface.
func nonNil[T driven.LLMService](svc T, err error) (driven.LLMService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}
