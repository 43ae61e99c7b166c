package admin

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*APIKeyRequest
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]*APIKeyRequest)}
}

func (s *MemoryStore) Create(_ context.Context, r *APIKeyRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*APIKeyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) PendingExists(_ context.Context, transactionID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.TransactionID == transactionID && r.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	r.Status = status
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*APIKeyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*APIKeyRequest, 0, len(s.requests))
	for _, r := range s.requests {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
