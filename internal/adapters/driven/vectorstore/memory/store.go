// Package memory provides an in-process safety index. Category filters are
// answered from one roaring bitmap of row positions per category.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

var errClosed = errors.New("memory vector store is closed")

// Store keeps documents in insertion order. Adding a document with an
// existing id replaces it in place.
type Store struct {
	mu         sync.RWMutex
	docs       []domain.SafetyDocument
	positions  map[string]uint32
	categories map[domain.SafetyCategory]*roaring.Bitmap
	dims       int
	closed     bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		positions:  make(map[string]uint32),
		categories: make(map[domain.SafetyCategory]*roaring.Bitmap),
	}
}

// Add stores documents. Every document needs an id and an embedding of the
// same length as those already stored. A rejected batch leaves the store
// unchanged.
func (s *Store) Add(_ context.Context, docs []domain.SafetyDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}

	dims, err := s.checkBatch(docs)
	if err != nil {
		return err
	}
	s.dims = dims

	for i := range docs {
		doc := docs[i]
		doc.Embedding = append([]float32(nil), doc.Embedding...)

		if pos, ok := s.positions[doc.ID]; ok {
			old := s.docs[pos].Category
			if old != doc.Category {
				s.bitmap(old).Remove(pos)
			}
			s.docs[pos] = doc
			s.bitmap(doc.Category).Add(pos)
			continue
		}

		pos := uint32(len(s.docs))
		s.docs = append(s.docs, doc)
		s.positions[doc.ID] = pos
		s.bitmap(doc.Category).Add(pos)
	}
	return nil
}

// checkBatch returns the dimension the store will have after docs are added.
func (s *Store) checkBatch(docs []domain.SafetyDocument) (int, error) {
	dims := s.dims
	for i := range docs {
		doc := &docs[i]
		if doc.ID == "" {
			return 0, fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
		}
		if len(doc.Embedding) == 0 {
			return 0, fmt.Errorf("%w: document %s has no embedding", domain.ErrInvalidInput, doc.ID)
		}
		if err := vectorstore.CheckDimensions(dims, len(doc.Embedding)); err != nil {
			return 0, err
		}
		dims = len(doc.Embedding)
	}
	return dims, nil
}

func (s *Store) bitmap(c domain.SafetyCategory) *roaring.Bitmap {
	bm, ok := s.categories[c]
	if !ok {
		bm = roaring.New()
		s.categories[c] = bm
	}
	return bm
}

// Search ranks stored documents by cosine similarity to query.
func (s *Store) Search(
	_ context.Context, query []float32, k int, filter *driven.SearchFilter,
) ([]domain.SafetyDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed
	}
	if k <= 0 || len(s.docs) == 0 {
		return []domain.SafetyDocument{}, nil
	}
	if err := vectorstore.CheckDimensions(s.dims, len(query)); err != nil {
		return nil, err
	}

	var hits []vectorstore.Scored
	if filter != nil && filter.Category != "" {
		bm, ok := s.categories[filter.Category]
		if !ok {
			return []domain.SafetyDocument{}, nil
		}
		hits = make([]vectorstore.Scored, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			doc := s.docs[it.Next()]
			hits = append(hits, vectorstore.Scored{Doc: doc, Score: vectorstore.CosineSimilarity(query, doc.Embedding)})
		}
	} else {
		hits = make([]vectorstore.Scored, 0, len(s.docs))
		for i := range s.docs {
			hits = append(hits, vectorstore.Scored{
				Doc:   s.docs[i],
				Score: vectorstore.CosineSimilarity(query, s.docs[i].Embedding),
			})
		}
	}

	return vectorstore.TopK(hits, k), nil
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errClosed
	}
	return len(s.docs), nil
}

// CategoryCount returns how many documents belong to category.
func (s *Store) CategoryCount(category domain.SafetyCategory) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bm, ok := s.categories[category]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Reset drops every document.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.docs = nil
	s.positions = make(map[string]uint32)
	s.categories = make(map[domain.SafetyCategory]*roaring.Bitmap)
	s.dims = 0
	return nil
}

// Close releases the documents. Later calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.docs = nil
	s.positions = nil
	s.categories = nil
	return nil
}
