package chatbot

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	conversation *Conversation
	expiresAt    time.Time
}

// MemoryStore implements Store using an in-memory map with TTL-based
// expiration. It is the default backing for single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryStore creates a new in-memory conversation store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

// Get retrieves a conversation. Returns nil, nil if not found or expired.
func (s *MemoryStore) Get(_ context.Context, userID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[userID]
	if !ok {
		return nil, nil //nolint:nilnil // Store interface specifies nil,nil for not-found
	}
	if time.Now().After(entry.expiresAt) {
		return nil, nil //nolint:nilnil // Store interface specifies nil,nil for expired
	}
	return entry.conversation, nil
}

// Put saves a conversation and refreshes its expiry.
func (s *MemoryStore) Put(_ context.Context, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[c.UserID] = &memoryEntry{
		conversation: c,
		expiresAt:    time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes a conversation.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}

// Cleanup removes expired conversations.
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for userID, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, userID)
		}
	}
	return nil
}

// StartCleanupRoutine starts a background goroutine that periodically
// removes expired conversations. The goroutine is stopped when Close is
// called.
func (s *MemoryStore) StartCleanupRoutine(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Cleanup(ctx)
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit. It is safe
// to call Close even if StartCleanupRoutine was never called.
func (s *MemoryStore) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
