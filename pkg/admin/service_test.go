package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/transaction"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

func newService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()

	users := user.NewMemoryStore()
	transactions := transaction.NewMemoryStore()
	store := NewMemoryStore()

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &user.User{
		ID:         "vendor-1",
		UserName:   "Zen Stores",
		AccNo:      555666777,
		Email:      "vendor@zenstores.test",
		Role:       auth.RoleVendor,
		VendorName: "Zen Stores",
	}))
	require.NoError(t, transactions.Create(ctx, &transaction.Transaction{
		TransactionID: 1234567890,
		SenderAccNo:   111222333,
		ReceiverAccNo: 555666777,
		Amount:        499.99,
		Status:        transaction.StatusPaid,
	}))

	return NewService(store, users, transactions, "api-key-secret"), store
}

func TestRequestAPIKey(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	r, err := service.RequestAPIKey(ctx, "vendor@zenstores.test", 1234567890)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "Zen Stores", r.VendorName)

	stored, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), stored.TransactionID)
}

func TestRequestAPIKeyRejections(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.RequestAPIKey(ctx, "nobody@example.com", 1234567890)
	assert.ErrorIs(t, err, ErrVendorNotFound)

	_, err = service.RequestAPIKey(ctx, "vendor@zenstores.test", 9999999999)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = service.RequestAPIKey(ctx, "vendor@zenstores.test", 1234567890)
	require.NoError(t, err)
	_, err = service.RequestAPIKey(ctx, "vendor@zenstores.test", 1234567890)
	assert.ErrorIs(t, err, ErrRequestPending)
}

func TestApproveIssuesScopedKey(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	r, err := service.RequestAPIKey(ctx, "vendor@zenstores.test", 1234567890)
	require.NoError(t, err)

	key, err := service.Approve(ctx, r.ID)
	require.NoError(t, err)

	claims, err := service.VerifyAPIKey(key)
	require.NoError(t, err)
	assert.Equal(t, "Zen Stores", claims.VendorName)
	assert.Equal(t, int64(1234567890), claims.TransactionID)
	assert.WithinDuration(t, time.Now().Add(apiKeyTTL), claims.ExpiresAt.Time, time.Minute)

	stored, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)

	_, err = service.Approve(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestRejectRequest(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	r, err := service.RequestAPIKey(ctx, "vendor@zenstores.test", 1234567890)
	require.NoError(t, err)

	require.NoError(t, service.Reject(ctx, r.ID))

	stored, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, stored.Status)

	assert.ErrorIs(t, service.Reject(ctx, r.ID), ErrNoPendingRequest)
}

func TestVerifyAPIKeyRejectsForgedKey(t *testing.T) {
	service, _ := newService(t)
	other := NewService(NewMemoryStore(), user.NewMemoryStore(), transaction.NewMemoryStore(), "other-secret")

	ctx := context.Background()
	r, err := service.RequestAPIKey(ctx, "vendor@zenstores.test", 1234567890)
	require.NoError(t, err)
	key, err := service.Approve(ctx, r.ID)
	require.NoError(t, err)

	_, err = other.VerifyAPIKey(key)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)

	_, err = service.VerifyAPIKey("not-a-key")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}
