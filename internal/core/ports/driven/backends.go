package driven

import "context"

// SafetyBackends hands out the embedding service and vector store that
// back safety retrieval. Both are expensive to construct, so providers
// build them once and return the same instances on every call.
type SafetyBackends interface {
	// Backends returns the shared embedding service and vector store.
	// An error means retrieval is unavailable.
	Backends(ctx context.Context) (EmbeddingService, VectorStore, error)
}
