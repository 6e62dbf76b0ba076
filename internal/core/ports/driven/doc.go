// Package driven holds the interfaces core services call out through:
// datasets, the safety index, AI providers and configuration.
//
// ReferenceSource and ConfigStore are always present. The rest may be
// missing, and the service using them degrades instead of failing:
//
//   - EmbeddingService and VectorStore: without them, safety lookups
//     return an unavailable error per category.
//   - LLMService: without it, safety questions return records only.
//   - SafetySource: only the offline ingest command reads it.
//   - PromptStore: built-in prompts are used when absent.
//
// This package imports domain and nothing else from internal/.
package driven
