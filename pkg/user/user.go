// Package user provides account management: registration, login, and
// password reset for customers, admins, and vendors.
package user

import (
	"context"
	"errors"
	"time"
)

// Card types issued by the bank.
const (
	CardVisa   = "visa"
	CardMaster = "master card"
)

// Domain errors.
var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrVendorNameExists   = errors.New("vendor name already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a bank account holder. Role distinguishes customers, admins,
// and vendors; vendors additionally carry a VendorName.
type User struct {
	ID              string
	UserName        string
	AccNo           int64
	AdminID         int
	CUID            int64
	Email           string
	BranchCode      string
	BranchName      string
	PasswordHash    string
	DebitCardNumber int64
	CardType        string
	Role            string
	VendorName      string
	CreatedAt       time.Time
}

// Store persists users.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByDebitCard(ctx context.Context, debitCardNumber int64) (*User, error)
	FindByAccNo(ctx context.Context, accNo int64) (*User, error)
	// FindAdmin returns any user with the admin role.
	FindAdmin(ctx context.Context) (*User, error)
	FindVendor(ctx context.Context, vendorName string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UpdateProfile persists the profile fields of u. Credentials and
	// bank-issued fields are not touched.
	UpdateProfile(ctx context.Context, u *User) error
	List(ctx context.Context) ([]*User, error)
}
