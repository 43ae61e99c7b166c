// Package transaction provides account-to-account transfers and
// transaction history lookups.
package transaction

import (
	"context"
	"errors"
	"time"
)

// Transaction statuses.
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusFailed  = "failed"
)

// Domain errors.
var (
	ErrNotFound         = errors.New("transaction not found")
	ErrSenderNotFound   = errors.New("sender account not found")
	ErrReceiverNotFound = errors.New("receiver account not found")
	ErrInvalidDebitCard = errors.New("invalid debit card number")
)

// Transaction is a transfer between two accounts.
type Transaction struct {
	TransactionID   int64
	SenderAccNo     int64
	SenderName      string
	ReceiverAccNo   int64
	ReceiverName    string
	Amount          float64
	DigitalChannel  string
	Status          string
	DebitCardNumber int64
	TransactionDate time.Time
}

// Store persists transactions.
type Store interface {
	Create(ctx context.Context, t *Transaction) error
	FindByID(ctx context.Context, transactionID int64) (*Transaction, error)
	// FindFailedByID returns the transaction only when its status is failed.
	FindFailedByID(ctx context.Context, transactionID int64) (*Transaction, error)
	ListByAccount(ctx context.Context, accNo int64) ([]*Transaction, error)
}
