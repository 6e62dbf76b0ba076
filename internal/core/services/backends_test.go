package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

func TestStaticBackends(t *testing.T) {
	embedder, store := &mockEmbeddingService{}, &mockVectorStore{}

	e, s, err := (&StaticBackends{Embedder: embedder, Store: store}).Backends(context.Background())
	require.NoError(t, err)
	assert.Same(t, embedder, e)
	assert.Same(t, store, s)

	_, _, err = (&StaticBackends{Store: store}).Backends(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, _, err = (&StaticBackends{Embedder: embedder}).Backends(context.Background())
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestLazyBackends_BuildsOnceUnderConcurrency(t *testing.T) {
	var builds atomic.Int32
	store := &mockVectorStore{}
	lazy := NewLazyBackends(func(context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		builds.Add(1)
		return &mockEmbeddingService{}, store, nil
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, s, err := lazy.Backends(context.Background())
			assert.NoError(t, err)
			assert.Same(t, store, s)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	require.NoError(t, lazy.Close())
	assert.True(t, store.closed)
}

func TestLazyBackends_RemembersFailure(t *testing.T) {
	var builds int
	lazy := NewLazyBackends(func(context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		builds++
		return nil, nil, errors.New("model not found")
	})

	_, _, err1 := lazy.Backends(context.Background())
	_, _, err2 := lazy.Backends(context.Background())

	assert.EqualError(t, err1, "model not found")
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, builds)
	assert.NoError(t, lazy.Close())
}

func TestLazyBackends_NilResultIsUnavailable(t *testing.T) {
	lazy := NewLazyBackends(func(context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		return &mockEmbeddingService{}, nil, nil
	})

	_, _, err := lazy.Backends(context.Background())

	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestLazyBackends_CancelledCallerDoesNotPoison(t *testing.T) {
	var builds int
	store := &mockVectorStore{}
	lazy := NewLazyBackends(func(ctx context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		builds++
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		return &mockEmbeddingService{}, store, nil
	})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := lazy.Backends(cancelled)
	assert.ErrorIs(t, err, context.Canceled)

	_, s, err := lazy.Backends(context.Background())
	require.NoError(t, err)
	assert.Same(t, store, s)
	assert.Equal(t, 1, builds)
}

func TestLazyBackends_CancelledDuringBuild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var builds int
	lazy := NewLazyBackends(func(buildCtx context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		builds++
		if builds == 1 {
			cancel()
			return nil, nil, buildCtx.Err()
		}
		return &mockEmbeddingService{}, &mockVectorStore{}, nil
	})

	_, _, err := lazy.Backends(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, _, err = lazy.Backends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
}

func TestLazyBackends_RetriesAfterInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var builds int
	lazy := NewLazyBackends(func(context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		builds++
		if builds == 1 {
			return nil, nil, domain.ErrVectorIndexUnavailable
		}
		return &mockEmbeddingService{}, &mockVectorStore{}, nil
	})
	lazy.now = func() time.Time { return now }

	_, _, err := lazy.Backends(context.Background())
	require.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)

	now = now.Add(DefaultBackendRetry / 2)
	_, _, err = lazy.Backends(context.Background())
	require.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	assert.Equal(t, 1, builds)

	now = now.Add(DefaultBackendRetry)
	_, _, err = lazy.Backends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, builds)

	_, _, err = lazy.Backends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
}
