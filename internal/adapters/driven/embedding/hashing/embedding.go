// Package hashing provides a local embedding service that needs no model
// or network. Words and their character trigrams are hashed into a fixed
// number of buckets and the result is L2-normalised.
//
// Korean drug names are written without spaces between ingredient and
// dosage form, so trigrams let "이부프로펜정" land close to "이부프로펜".
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults.
const (
	DefaultDimensions = 512
	ModelName         = "hashing-trigram-512"

	wordWeight    = 1.0
	trigramWeight = 0.5
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// EmbeddingService hashes text features into a dense vector.
type EmbeddingService struct {
	dimensions int
	model      string
}

// NewEmbeddingService creates a hashing embedder. dims <= 0 selects
// DefaultDimensions.
func NewEmbeddingService(dims int) *EmbeddingService {
	model := ModelName
	if dims <= 0 {
		dims = DefaultDimensions
	} else if dims != DefaultDimensions {
		model = "hashing-trigram-custom"
	}
	return &EmbeddingService{dimensions: dims, model: model}
}

// Embed returns the feature-hashed vector for text. Text without letters
// or digits yields a zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := make([]float64, s.dimensions)
	for _, word := range tokenize(text) {
		s.add(acc, word, wordWeight)
		padded := []rune("^" + word + "$")
		for i := 0; i+3 <= len(padded); i++ {
			s.add(acc, string(padded[i:i+3]), trigramWeight)
		}
	}

	var sum float64
	for _, x := range acc {
		sum += x * x
	}
	vec := make([]float32, s.dimensions)
	if sum == 0 {
		return vec, nil
	}
	n := math.Sqrt(sum)
	for i, x := range acc {
		vec[i] = float32(x / n)
	}
	return vec, nil
}

// add hashes one feature into acc. The top hash bit picks the sign so
// collisions tend to cancel.
func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum32()
	idx := int(sum % uint32(s.dimensions))
	if sum&(1<<31) != 0 {
		weight = -weight
	}
	acc[idx] += weight
}

// EmbedBatch embeds each text.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the embedder's model identifier.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }

func tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	return tokenPattern.FindAllString(text, -1)
}
