package dispute

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-memory map. Used in tests and
// local development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	disputes map[string]*Dispute
}

// NewMemoryStore creates an empty in-memory dispute store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{disputes: make(map[string]*Dispute)}
}

// Create inserts a dispute.
func (s *MemoryStore) Create(_ context.Context, d *Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disputes[d.ID] = d
	return nil
}

// FindByID retrieves a dispute by id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.disputes[id]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

// FindByTransactionID retrieves the dispute filed for a transaction.
func (s *MemoryStore) FindByTransactionID(_ context.Context, transactionID int64) (*Dispute, error) {
	return s.findBy(func(d *Dispute) bool { return d.TransactionID == transactionID })
}

// FindByTicketNumber retrieves a dispute by ticket number.
func (s *MemoryStore) FindByTicketNumber(_ context.Context, ticketNumber int) (*Dispute, error) {
	return s.findBy(func(d *Dispute) bool { return d.TicketNumber == ticketNumber })
}

// List returns disputes matching the filter, newest first.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]*Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Dispute
	for _, d := range s.disputes {
		if f.Email != "" && d.Email != f.Email {
			continue
		}
		if f.VendorName != "" && d.VendorName != f.VendorName {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && d.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && d.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateStatus resolves a dispute and returns the updated record.
func (s *MemoryStore) UpdateStatus(_ context.Context, id, status, remarks string, adminID int) (*Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disputes[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	d.Status = status
	d.AdminRemarks = remarks
	d.ResolvedBy = adminID
	d.ResolvedAt = &now
	return d, nil
}

// SetVendorResponse records the vendor's response and closes the dispute.
func (s *MemoryStore) SetVendorResponse(_ context.Context, id, response string) (*Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disputes[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	d.VendorResponse = response
	d.Status = StatusClosed
	d.ResolvedAt = &now
	return d, nil
}

// TicketNumberExists reports whether a ticket number is already assigned.
func (s *MemoryStore) TicketNumberExists(_ context.Context, ticketNumber int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.disputes {
		if d.TicketNumber == ticketNumber {
			return true, nil
		}
	}
	return false, nil
}

// StatusCounts aggregates dispute counts per status and the total disputed
// amount over the window.
func (s *MemoryStore) StatusCounts(_ context.Context, from, to time.Time) (map[string]int, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	var total float64
	for _, d := range s.disputes {
		if d.CreatedAt.Before(from) || d.CreatedAt.After(to) {
			continue
		}
		counts[d.Status]++
		total += d.Amount
	}
	return counts, total, nil
}

func (s *MemoryStore) findBy(match func(*Dispute) bool) (*Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.disputes {
		if match(d) {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
