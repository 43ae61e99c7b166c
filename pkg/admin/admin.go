// Package admin manages vendor API key requests: vendors ask for a key
// scoped to one of their transactions, admins approve or reject, and
// approved requests yield a signed key valid for 24 hours.
package admin

import (
	"context"
	"errors"
	"time"
)

// API key request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Workflow rejections surfaced to callers.
var (
	ErrVendorNotFound      = errors.New("Vendor not found")
	ErrTransactionNotFound = errors.New("Transaction not found for this vendor")
	ErrRequestPending      = errors.New("API key request is already pending")
	ErrNoPendingRequest    = errors.New("No pending API key request found for this vendor")
	ErrRequestNotFound     = errors.New("API key request not found")
	ErrInvalidAPIKey       = errors.New("API Key is not valid. Please request it again")
)

// APIKeyRequest is a vendor's pending, approved, or rejected ask for a
// transaction-scoped API key.
type APIKeyRequest struct {
	ID            string    `json:"id"`
	VendorName    string    `json:"vendorName"`
	Email         string    `json:"email"`
	TransactionID int64     `json:"transactionId"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store persists API key requests.
type Store interface {
	Create(ctx context.Context, r *APIKeyRequest) error
	FindByID(ctx context.Context, id string) (*APIKeyRequest, error)
	// PendingExists reports whether the transaction already has a
	// pending request.
	PendingExists(ctx context.Context, transactionID int64) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*APIKeyRequest, error)
}
