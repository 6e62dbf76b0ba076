// Package cache wraps an embedding service with a persistent bbolt cache.
// Vectors are keyed by model name and the SHA-256 of the text, so switching
// models never returns stale vectors.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService serves cached vectors and embeds misses through the
// wrapped service.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	db     *bbolt.DB
	bucket []byte
}

// New opens (or creates) the cache file at path in front of inner.
func New(path string, inner driven.EmbeddingService) (*EmbeddingService, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	bucket := []byte(inner.ModelName())
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}

	return &EmbeddingService{inner: inner, db: db, bucket: bucket}, nil
}

func key(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return sum[:]
}

func (s *EmbeddingService) lookup(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for i, t := range texts {
			data := b.Get(key(t))
			if data == nil {
				continue
			}
			v, err := vectorstore.DecodeVector(data)
			if err != nil {
				return err
			}
			out[i] = v
		}
		return nil
	})
	return out, err
}

func (s *EmbeddingService) store(texts []string, vecs [][]float32) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for i, t := range texts {
			if err := b.Put(key(t), vectorstore.EncodeVector(vecs[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

// Embed returns the cached vector for text, embedding it on a miss.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends only the cache misses to the wrapped service.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out, err := s.lookup(texts)
	if err != nil {
		logger.Warn("embedding cache read failed: %v", err)
		out = make([][]float32, len(texts))
	}

	var (
		missTexts []string
		missIdx   []int
	)
	for i, v := range out {
		if v == nil {
			missTexts = append(missTexts, texts[i])
			missIdx = append(missIdx, i)
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missTexts), len(missTexts))

	vecs, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
	}

	if err := s.store(missTexts, vecs); err != nil {
		logger.Warn("embedding cache write failed: %v", err)
	}
	return out, nil
}

// Dimensions returns the wrapped service's dimensions.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping pings the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the cache file and the wrapped service.
func (s *EmbeddingService) Close() error {
	dbErr := s.db.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	return dbErr
}
