package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-memory slice. Used in tests and
// local development without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications []*Notification
}

// NewMemoryStore creates an empty in-memory notification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert persists a notification, assigning an id and timestamp when unset.
func (s *MemoryStore) Insert(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.notifications = append(s.notifications, n)
	return nil
}

// ListByEmail returns the recipient's notifications, newest first.
func (s *MemoryStore) ListByEmail(_ context.Context, email string) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.notifications {
		if n.Email == email {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkRead marks a notification as read.
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
