package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brillianbank/dispute-platform/pkg/transaction"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

const (
	apiKeyTTL      = 24 * time.Hour
	requestCleanup = 5 * time.Minute
)

// APIKeyClaims scope a signed key to one vendor and one transaction.
type APIKeyClaims struct {
	VendorName    string `json:"vendorName"`
	TransactionID int64  `json:"transactionId"`
	jwt.RegisteredClaims
}

// Service runs the API key request workflow.
type Service struct {
	store        Store
	users        user.Store
	transactions transaction.Store
	keySecret    []byte
}

// NewService creates an admin service. keySecret signs generated API keys.
func NewService(store Store, users user.Store, transactions transaction.Store, keySecret string) *Service {
	return &Service{
		store:        store,
		users:        users,
		transactions: transactions,
		keySecret:    []byte(keySecret),
	}
}

// RequestAPIKey files a pending request for the vendor with the given
// account email. The transaction must belong to the vendor, and only one
// pending request per transaction is allowed.
func (s *Service) RequestAPIKey(ctx context.Context, email string, transactionID int64) (*APIKeyRequest, error) {
	vendor, err := s.users.FindByEmail(ctx, email)
	if err != nil || vendor.VendorName == "" {
		return nil, ErrVendorNotFound
	}

	txn, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil || txn.ReceiverAccNo != vendor.AccNo {
		return nil, ErrTransactionNotFound
	}

	pending, err := s.store.PendingExists(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrRequestPending
	}

	r := &APIKeyRequest{
		ID:            uuid.NewString(),
		VendorName:    vendor.VendorName,
		Email:         email,
		TransactionID: transactionID,
		Status:        StatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	slog.Info("api key requested", "vendor", vendor.VendorName, "transaction_id", transactionID)
	return r, nil
}

// Approve grants a pending request and returns the signed key. The key
// expires after 24 hours; the request record is purged shortly after the
// decision so the queue only shows recent activity.
func (s *Service) Approve(ctx context.Context, requestID string) (string, error) {
	r, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if r.Status != StatusPending {
		return "", ErrNoPendingRequest
	}

	if _, err := s.users.FindVendor(ctx, r.VendorName); err != nil {
		return "", ErrVendorNotFound
	}

	key, err := s.signKey(r.VendorName, r.TransactionID)
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateStatus(ctx, requestID, StatusApproved); err != nil {
		return "", err
	}
	s.scheduleCleanup(requestID)

	slog.Info("api key approved", "vendor", r.VendorName, "transaction_id", r.TransactionID)
	return key, nil
}

// Reject declines a pending request.
func (s *Service) Reject(ctx context.Context, requestID string) error {
	r, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if r.Status != StatusPending {
		return ErrNoPendingRequest
	}

	if err := s.store.UpdateStatus(ctx, requestID, StatusRejected); err != nil {
		return err
	}
	s.scheduleCleanup(requestID)

	slog.Info("api key rejected", "vendor", r.VendorName, "transaction_id", r.TransactionID)
	return nil
}

// ListRequests returns all requests, newest first.
func (s *Service) ListRequests(ctx context.Context) ([]*APIKeyRequest, error) {
	return s.store.List(ctx)
}

// VerifyAPIKey parses a key and returns its scope.
func (s *Service) VerifyAPIKey(key string) (*APIKeyClaims, error) {
	claims := &APIKeyClaims{}
	token, err := jwt.ParseWithClaims(key, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.keySecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidAPIKey
	}
	return claims, nil
}

func (s *Service) signKey(vendorName string, transactionID int64) (string, error) {
	now := time.Now()
	claims := APIKeyClaims{
		VendorName:    vendorName,
		TransactionID: transactionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(apiKeyTTL)),
		},
	}
	key, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.keySecret)
	if err != nil {
		return "", fmt.Errorf("signing api key: %w", err)
	}
	return key, nil
}

func (s *Service) scheduleCleanup(requestID string) {
	time.AfterFunc(requestCleanup, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.Delete(ctx, requestID); err != nil {
			slog.Error("cleaning up api key request failed", "request_id", requestID, "error", err)
		}
	})
}
