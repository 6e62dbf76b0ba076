// Package vectorstore holds the vector math shared by the safety index
// backends. Each backend lives in its own subpackage.
package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Scored pairs a document with its similarity to a query.
type Scored struct {
	Doc   domain.SafetyDocument
	Score float64
}

// TopK sorts hits by descending score and keeps the first k. Ties keep
// their input order. The returned documents carry Similarity and no
// embedding.
func TopK(hits []Scored, k int) []domain.SafetyDocument {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	out := make([]domain.SafetyDocument, len(hits))
	for i := range hits {
		doc := hits[i].Doc
		doc.Similarity = hits[i].Score
		doc.Embedding = nil
		out[i] = doc
	}
	return out
}

// EncodeVector packs v as little-endian float32s.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// DecodeVector unpacks a blob written by EncodeVector.
func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}

// CheckDimensions reports domain.ErrDimensionMismatch when got differs
// from a known non-zero dimension.
func CheckDimensions(want, got int) error {
	if want != 0 && got != want {
		return fmt.Errorf("%w: index has %d dimensions, vector has %d", domain.ErrDimensionMismatch, want, got)
	}
	return nil
}
