package transaction

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store with an in-memory map. Used in tests and
// local development without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	txns map[int64]*Transaction
}

// NewMemoryStore creates an empty in-memory transaction store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{txns: make(map[int64]*Transaction)}
}

// Create inserts a transaction.
func (s *MemoryStore) Create(_ context.Context, t *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns[t.TransactionID] = t
	return nil
}

// FindByID retrieves a transaction by id.
func (s *MemoryStore) FindByID(_ context.Context, transactionID int64) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.txns[transactionID]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

// FindFailedByID returns the transaction only when its status is failed.
func (s *MemoryStore) FindFailedByID(_ context.Context, transactionID int64) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.txns[transactionID]; ok && t.Status == StatusFailed {
		return t, nil
	}
	return nil, ErrNotFound
}

// ListByAccount returns transactions the account sent or received, newest first.
func (s *MemoryStore) ListByAccount(_ context.Context, accNo int64) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Transaction
	for _, t := range s.txns {
		if t.SenderAccNo == accNo || t.ReceiverAccNo == accNo {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	return out, nil
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
