package user

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-memory map. Used in tests and
// local development without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

// Create inserts a user.
func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

// FindByID retrieves a user by id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

// FindByEmail retrieves a user by email.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return s.findBy(func(u *User) bool { return u.Email == email })
}

// FindByDebitCard retrieves the holder of a debit card number.
func (s *MemoryStore) FindByDebitCard(_ context.Context, card int64) (*User, error) {
	return s.findBy(func(u *User) bool { return u.DebitCardNumber == card })
}

// FindByAccNo retrieves a user by account number.
func (s *MemoryStore) FindByAccNo(_ context.Context, accNo int64) (*User, error) {
	return s.findBy(func(u *User) bool { return u.AccNo == accNo })
}

// FindAdmin returns any user with the admin role.
func (s *MemoryStore) FindAdmin(_ context.Context) (*User, error) {
	return s.findBy(func(u *User) bool { return u.Role == "admin" })
}

// FindVendor retrieves a vendor account by vendor name.
func (s *MemoryStore) FindVendor(_ context.Context, vendorName string) (*User, error) {
	return s.findBy(func(u *User) bool { return u.Role == "vendor" && u.VendorName == vendorName })
}

// UpdatePassword replaces a user's password hash.
func (s *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// UpdateProfile persists the profile fields of u.
func (s *MemoryStore) UpdateProfile(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	stored.UserName = u.UserName
	stored.BranchCode = u.BranchCode
	stored.BranchName = u.BranchName
	return nil
}

// List returns all users.
func (s *MemoryStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *MemoryStore) findBy(match func(*User) bool) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
