package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory DocumentStore. Used when no object storage
// is configured and by tests; like the default job store, it does not
// survive process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
	}
}

// Put stores document bytes under their content hash.
func (s *MemoryStore) Put(_ context.Context, hash string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[hash]; !exists {
		s.objects[hash] = data
	}
	return nil
}

// Get retrieves the document bytes for a hash.
func (s *MemoryStore) Get(_ context.Context, hash string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.objects[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("document %s not found", hash)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists checks whether a document with the hash is stored.
func (s *MemoryStore) Exists(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[hash]
	return ok, nil
}

// Delete removes the document for a hash.
func (s *MemoryStore) Delete(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, hash)
	return nil
}

// GetURL returns a pseudo-URL for a stored document.
func (s *MemoryStore) GetURL(hash string) string {
	return "memory://" + objectKey(hash)
}
