// Package session persists serialized trip snapshots keyed by the owning
// user. The payload is opaque here; the trip service owns the encoding and
// must get back byte-identical state (round-trip property).
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound occurs when no snapshot exists for the user.
var ErrNotFound = errors.New("session not found")

// Store persists one snapshot per user id.
type Store interface {
	Save(ctx context.Context, userID string, snapshot []byte) error
	Load(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
}

type memoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryStore builds an in-memory snapshot store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{snapshots: make(map[string][]byte)}
}

func (s *memoryStore) Save(_ context.Context, userID string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(snapshot))
	copy(buf, snapshot)
	s.snapshots[userID] = buf
	return nil
}

func (s *memoryStore) Load(_ context.Context, userID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[userID]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(snapshot))
	copy(buf, snapshot)
	return buf, nil
}

func (s *memoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	return nil
}
