package transaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brillianbank/dispute-platform/pkg/user"
)

// Service implements the transfer workflow.
type Service struct {
	store Store
	users user.Store
}

// NewService creates a transaction service.
func NewService(store Store, users user.Store) *Service {
	return &Service{store: store, users: users}
}

// MakeInput carries a transfer request.
type MakeInput struct {
	TransactionID   int64
	SenderAccNo     int64
	ReceiverAccNo   int64
	Amount          float64
	DebitCardNumber int64
	DigitalChannel  string
	Status          string
}

// Make records a transfer. The sender must own the debit card used; both
// accounts must exist. Names are resolved from the account records.
func (s *Service) Make(ctx context.Context, in MakeInput) (*Transaction, error) {
	sender, err := s.users.FindByAccNo(ctx, in.SenderAccNo)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}

	receiver, err := s.users.FindByAccNo(ctx, in.ReceiverAccNo)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	if sender.DebitCardNumber != in.DebitCardNumber {
		return nil, ErrInvalidDebitCard
	}

	senderName := sender.UserName
	if sender.VendorName != "" {
		senderName = sender.VendorName
	}
	receiverName := receiver.UserName
	if receiver.VendorName != "" {
		receiverName = receiver.VendorName
	}

	channel := in.DigitalChannel
	if channel == "" {
		channel = "Online"
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}

	t := &Transaction{
		TransactionID:   in.TransactionID,
		SenderAccNo:     in.SenderAccNo,
		SenderName:      senderName,
		ReceiverAccNo:   in.ReceiverAccNo,
		ReceiverName:    receiverName,
		Amount:          in.Amount,
		DigitalChannel:  channel,
		Status:          status,
		DebitCardNumber: in.DebitCardNumber,
		TransactionDate: time.Now(),
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	slog.Info("transaction recorded",
		"transaction_id", t.TransactionID, "status", t.Status, "amount", t.Amount)
	return t, nil
}

// ListForUser returns the transactions on the user's account.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Transaction, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListByAccount(ctx, u.AccNo)
}
