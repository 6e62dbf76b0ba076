package ai

import (
	"context"
	"time"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before the settings command saves
// them, by building the service and pinging it once.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding reports whether the embedding provider answers.
// Unconfigured settings are valid; the local embedder needs no network.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(context.Background(), svc, v.timeout)
}

// ValidateLLM reports whether the LLM provider answers.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(context.Background(), svc, v.timeout)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, p pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Ping(ctx)
}
