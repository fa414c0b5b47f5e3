package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmarinov/evlog/pkg/domain"
)

// memoryStore is an in-memory Store for tests and ephemeral use.
//
// The document is kept in encoded form so callers never share state
// with the store, matching the isolation of the bbolt implementation.
type memoryStore struct {
	mu      sync.Mutex
	raw     []byte
	corrupt []byte
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

// Load implements Store.Load.
func (s *memoryStore) Load(ctx context.Context) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := domain.NewDocument()

	if s.raw == nil {
		if err := s.write(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	// Match the bbolt store: an undecodable document is set aside and
	// replaced with a fresh default rather than failing the load.
	if err := json.Unmarshal(s.raw, doc); err != nil {
		s.corrupt = s.raw
		doc = domain.NewDocument()
		if err := s.write(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	if normalizeDocument(doc) {
		if err := s.write(doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// Save implements Store.Save.
func (s *memoryStore) Save(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.write(doc)
}

func (s *memoryStore) write(doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	s.raw = data
	return nil
}

// Close implements Store.Close.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SeedMemoryStore creates an in-memory store preloaded with raw JSON,
// for exercising load-time repair of documents from older versions.
func SeedMemoryStore(raw []byte) Store {
	return &memoryStore{raw: raw}
}
