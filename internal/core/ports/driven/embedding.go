package driven

import "context"

// EmbeddingService turns text into vectors for the safety index. Queries and
// ingested documents must go through the same model, since a VectorStore
// compares them by cosine similarity.
//
// Adapters: the built-in hashing embedder (no network), Ollama and OpenAI,
// optionally behind a bbolt cache.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector width. A postgres index sizes its column
	// from it.
	Dimensions() int

	ModelName() string

	// Ping makes the cheapest request the provider offers.
	Ping(ctx context.Context) error

	Close() error
}
