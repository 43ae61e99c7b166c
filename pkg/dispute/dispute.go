// Package dispute implements the dispute registration and adjudication
// workflow: customers file disputes against transactions, admins resolve
// them, and vendors respond to disputes raised against them.
package dispute

import (
	"context"
	"errors"
	"time"
)

// Dispute statuses.
const (
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusClosed    = "closed"
)

// Workflow rejections. The error text is the user-facing cause surfaced
// by the chatbot and the API, matching the messages customers see.
var (
	ErrAdminNotFound       = errors.New("Admin not found")
	ErrTransactionNotFound = errors.New("No transaction found")
	ErrAlreadySubmitted    = errors.New("Transaction has already been submitted")
	ErrDebitCardNotFound   = errors.New("Debit Card Number Not Found")
	ErrVendorNotFound      = errors.New("Vendor not found")
	ErrNotFound            = errors.New("Dispute not found")
	ErrResponseExists      = errors.New("Response already submitted for this dispute")
)

// Dispute is a customer complaint about a transaction, tracked by ticket
// number through the submitted/approved/rejected/closed lifecycle.
type Dispute struct {
	ID              string     `json:"id"`
	DigitalChannel  string     `json:"digitalChannel"`
	ComplaintType   string     `json:"complaintType"`
	TransactionID   int64      `json:"transactionId"`
	Description     string     `json:"description"`
	DebitCardNumber int64      `json:"debitCardNumber"`
	Email           string     `json:"email"`
	Status          string     `json:"status"`
	TicketNumber    int        `json:"ticketNumber"`
	CardType        string     `json:"cardType"`
	AdminID         int        `json:"adminId"`
	AdminRemarks    string     `json:"adminRemarks,omitempty"`
	ResolvedBy      int        `json:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	Amount          float64    `json:"amount"`
	VendorName      string     `json:"vendorName,omitempty"`
	VendorResponse  string     `json:"vendorResponse,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Filter narrows dispute listings. Zero-valued fields are ignored.
type Filter struct {
	Email      string
	VendorName string
	Status     string
	From       time.Time
	To         time.Time
}

// Store persists disputes.
type Store interface {
	Create(ctx context.Context, d *Dispute) error
	FindByID(ctx context.Context, id string) (*Dispute, error)
	FindByTransactionID(ctx context.Context, transactionID int64) (*Dispute, error)
	FindByTicketNumber(ctx context.Context, ticketNumber int) (*Dispute, error)
	// List returns disputes matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]*Dispute, error)
	UpdateStatus(ctx context.Context, id, status, remarks string, adminID int) (*Dispute, error)
	SetVendorResponse(ctx context.Context, id, response string) (*Dispute, error)
	TicketNumberExists(ctx context.Context, ticketNumber int) (bool, error)
	// StatusCounts aggregates dispute counts per status and the total
	// disputed amount over the window.
	StatusCounts(ctx context.Context, from, to time.Time) (map[string]int, float64, error)
}
