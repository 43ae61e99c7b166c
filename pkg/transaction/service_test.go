package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillianbank/dispute-platform/pkg/user"
)

func seedAccounts(t *testing.T) *user.MemoryStore {
	t.Helper()
	users := user.NewMemoryStore()
	require.NoError(t, users.Create(t.Context(), &user.User{
		ID: "u-sender", UserName: "Alice", AccNo: 100000000001,
		DebitCardNumber: 4111111111111111, Email: "alice@example.com",
	}))
	require.NoError(t, users.Create(t.Context(), &user.User{
		ID: "u-receiver", UserName: "", VendorName: "acme-store", Role: "vendor",
		AccNo: 100000000002, DebitCardNumber: 4222222222222222, Email: "acme@example.com",
	}))
	return users
}

func TestMake(t *testing.T) {
	users := seedAccounts(t)
	store := NewMemoryStore()
	svc := NewService(store, users)

	txn, err := svc.Make(t.Context(), MakeInput{
		TransactionID:   1234567890,
		SenderAccNo:     100000000001,
		ReceiverAccNo:   100000000002,
		Amount:          250.75,
		DebitCardNumber: 4111111111111111,
		Status:          StatusPaid,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", txn.SenderName)
	assert.Equal(t, "acme-store", txn.ReceiverName, "vendor accounts use their vendor name")
	assert.Equal(t, "Online", txn.DigitalChannel)

	stored, err := store.FindByID(t.Context(), 1234567890)
	require.NoError(t, err)
	assert.Equal(t, 250.75, stored.Amount)
}

func TestMake_SenderMissing(t *testing.T) {
	svc := NewService(NewMemoryStore(), user.NewMemoryStore())

	_, err := svc.Make(t.Context(), MakeInput{SenderAccNo: 1, ReceiverAccNo: 2})
	assert.ErrorIs(t, err, ErrSenderNotFound)
}

func TestMake_ReceiverMissing(t *testing.T) {
	users := seedAccounts(t)
	svc := NewService(NewMemoryStore(), users)

	_, err := svc.Make(t.Context(), MakeInput{
		SenderAccNo:   100000000001,
		ReceiverAccNo: 999999999999,
	})
	assert.ErrorIs(t, err, ErrReceiverNotFound)
}

func TestMake_WrongDebitCard(t *testing.T) {
	users := seedAccounts(t)
	svc := NewService(NewMemoryStore(), users)

	_, err := svc.Make(t.Context(), MakeInput{
		SenderAccNo:     100000000001,
		ReceiverAccNo:   100000000002,
		DebitCardNumber: 1111222233334444,
	})
	assert.ErrorIs(t, err, ErrInvalidDebitCard)
}

func TestListForUser(t *testing.T) {
	users := seedAccounts(t)
	store := NewMemoryStore()
	svc := NewService(store, users)

	for _, id := range []int64{1234567890, 1234567891} {
		_, err := svc.Make(t.Context(), MakeInput{
			TransactionID:   id,
			SenderAccNo:     100000000001,
			ReceiverAccNo:   100000000002,
			Amount:          10,
			DebitCardNumber: 4111111111111111,
		})
		require.NoError(t, err)
	}

	txns, err := svc.ListForUser(t.Context(), "u-sender")
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	// Receiver sees the same transfers.
	txns, err = svc.ListForUser(t.Context(), "u-receiver")
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestFindFailedByID(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(t.Context(), &Transaction{
		TransactionID: 1234567899, Status: StatusFailed,
	}))

	_, err := store.FindFailedByID(t.Context(), 1234567899)
	assert.NoError(t, err)

	require.NoError(t, store.Create(t.Context(), &Transaction{
		TransactionID: 1234567898, Status: StatusPaid,
	}))
	_, err = store.FindFailedByID(t.Context(), 1234567898)
	assert.ErrorIs(t, err, ErrNotFound)
}
