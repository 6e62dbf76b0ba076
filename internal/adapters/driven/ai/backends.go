package ai

import (
	"context"
	"fmt"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore/memory"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore/pgvector"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore/sqlite"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// StoreMode says whether a missing index may be created.
type StoreMode int

const (
	// OpenForQuery fails when the sqlite index file does not exist.
	OpenForQuery StoreMode = iota

	// OpenForIngest creates the index when missing.
	OpenForIngest
)

// CreateVectorStore opens the safety index selected by settings. dims is
// the embedder's vector width; pgvector needs it to size its column.
func CreateVectorStore(
	ctx context.Context, settings *domain.SafetySettings, dims int, mode StoreMode,
) (driven.VectorStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no safety settings", domain.ErrVectorIndexUnavailable)
	}

	switch settings.Backend {
	case domain.VectorBackendMemory:
		return memory.NewStore(), nil

	case domain.VectorBackendSQLite, "":
		var (
			store *sqlite.Store
			err   error
		)
		if mode == OpenForIngest {
			store, err = sqlite.NewStore(settings.Path, settings.Collection)
		} else {
			store, err = sqlite.OpenExisting(settings.Path, settings.Collection)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return store, nil

	case domain.VectorBackendPostgres:
		if dims <= 0 {
			return nil, fmt.Errorf("%w: embedding dimensions unknown, set a known embedding model",
				domain.ErrVectorIndexUnavailable)
		}
		store, err := pgvector.NewStore(ctx, settings.DSN, settings.Collection, dims)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unsupported vector backend %q",
			domain.ErrVectorIndexUnavailable, settings.Backend)
	}
}

// SafetyBackendBuilder returns a constructor for the embedding service and
// vector store described by settings, suitable for services.NewLazyBackends.
func SafetyBackendBuilder(
	settings *domain.AppSettings, mode StoreMode,
) func(ctx context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
	return func(ctx context.Context) (driven.EmbeddingService, driven.VectorStore, error) {
		embedder, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
		if err != nil {
			return nil, nil, err
		}

		store, err := CreateVectorStore(ctx, &settings.Safety, embedder.Dimensions(), mode)
		if err != nil {
			embedder.Close()
			return nil, nil, err
		}
		return embedder, store, nil
	}
}
