package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataUnavailable indicates the reference catalog or safety index is
	// not loaded or not reachable. Search operations degrade to empty results.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMalformedInput indicates an unparseable record during load or ingest.
	// The offending record is skipped and counted.
	ErrMalformedInput = errors.New("malformed input")

	// ErrBackendFailure indicates the embedding service or vector store failed
	// during a query.
	ErrBackendFailure = errors.New("backend failure")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Safety answers are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Safety retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the safety vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates an embedding does not match the index dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
