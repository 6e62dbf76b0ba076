package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure both providers implement the interface.
var (
	_ driven.SafetyBackends = (*StaticBackends)(nil)
	_ driven.SafetyBackends = (*LazyBackends)(nil)
)

// StaticBackends serves backends that were constructed up front.
type StaticBackends struct {
	Embedder driven.EmbeddingService
	Store    driven.VectorStore
}

// Backends returns the configured backends.
func (b *StaticBackends) Backends(_ context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
	if b.Embedder == nil {
		return nil, nil, domain.ErrEmbeddingUnavailable
	}
	if b.Store == nil {
		return nil, nil, domain.ErrVectorIndexUnavailable
	}
	return b.Embedder, b.Store, nil
}

// BackendBuilder constructs the embedding service and vector store.
type BackendBuilder func(ctx context.Context) (driven.EmbeddingService, driven.VectorStore, error)

// DefaultBackendRetry is how long a failed construction is remembered
// before the next caller tries again.
const DefaultBackendRetry = 30 * time.Second

// LazyBackends builds backends on first use. Concurrent first callers wait
// for a single construction and a successful result is kept for the life of
// the process. A failure is returned to callers for the retry interval, then
// rebuilt; a failure caused by the caller's own cancelled context is never
// kept.
type LazyBackends struct {
	build BackendBuilder
	retry time.Duration
	now   func() time.Time

	mu       sync.Mutex
	built    bool
	embedder driven.EmbeddingService
	store    driven.VectorStore
	err      error
	failedAt time.Time
}

// NewLazyBackends creates a provider that builds with build on demand.
func NewLazyBackends(build BackendBuilder) *LazyBackends {
	return &LazyBackends{build: build, retry: DefaultBackendRetry, now: time.Now}
}

// Backends returns the shared backends, constructing them when needed.
func (b *LazyBackends) Backends(ctx context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return b.embedder, b.store, nil
	}
	if b.err != nil && b.now().Sub(b.failedAt) < b.retry {
		return nil, nil, b.err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	logger.Debug("Constructing safety backends")
	embedder, store, err := b.build(ctx)
	if err == nil && (embedder == nil || store == nil) {
		_ = closeAll(embedder, store)
		err = domain.ErrVectorIndexUnavailable
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, err
		}
		logger.Warn("safety backends unavailable: %v", err)
		b.err, b.failedAt = err, b.now()
		return nil, nil, err
	}

	b.embedder, b.store, b.err, b.built = embedder, store, nil, true
	return embedder, store, nil
}

// Close releases whichever backends were constructed.
func (b *LazyBackends) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return closeAll(b.embedder, b.store)
}

func closeAll(embedder driven.EmbeddingService, store driven.VectorStore) error {
	var errs []error
	if store != nil {
		errs = append(errs, store.Close())
	}
	if embedder != nil {
		errs = append(errs, embedder.Close())
	}
	return errors.Join(errs...)
}
