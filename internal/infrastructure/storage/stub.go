package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	billingapp "github.com/travelcrm/backend/internal/application/billing"
)

var _ billingapp.ProofStorage = (*StubProofStorage)(nil)

// StubProofStorage is an in-memory ProofStorage for development and tests.
// It keeps uploaded files in a map and returns fake download URLs.
type StubProofStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubProofStorage creates an empty in-memory proof store
func NewStubProofStorage() *StubProofStorage {
	return &StubProofStorage{objects: make(map[string][]byte)}
}

// Upload stores the file in memory
func (s *StubProofStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = buf
	return nil
}

// GenerateDownloadURL returns a fake URL for a stored file
func (s *StubProofStorage) GenerateDownloadURL(_ context.Context, storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[storageKey]; !ok {
		return "", fmt.Errorf("object not found: %s", storageKey)
	}
	return "stub://" + storageKey, nil
}

// Get returns the stored bytes for a key, for test assertions
func (s *StubProofStorage) Get(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}

// Len returns the number of stored objects
func (s *StubProofStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
