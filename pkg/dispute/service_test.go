package dispute

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/mail"
	"github.com/brillianbank/dispute-platform/pkg/notification"
	"github.com/brillianbank/dispute-platform/pkg/transaction"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

type fixture struct {
	service       *Service
	store         *MemoryStore
	users         *user.MemoryStore
	transactions  *transaction.MemoryStore
	notifications *notification.MemoryStore
	mailer        *mail.Recorder
}

func newFixture(t *testing.T, refundDelay time.Duration) *fixture {
	t.Helper()

	f := &fixture{
		store:         NewMemoryStore(),
		users:         user.NewMemoryStore(),
		transactions:  transaction.NewMemoryStore(),
		notifications: notification.NewMemoryStore(),
		mailer:        &mail.Recorder{},
	}
	f.service = NewService(f.store, f.users, f.transactions, f.notifications, f.mailer, refundDelay)

	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &user.User{
		ID:       "admin-1",
		UserName: "Head Office",
		Email:    "admin@brillianbank.test",
		AdminID:  7,
		Role:     auth.RoleAdmin,
	}))
	require.NoError(t, f.users.Create(ctx, &user.User{
		ID:              "user-1",
		UserName:        "Asha",
		AccNo:           111222333,
		Email:           "asha@example.com",
		DebitCardNumber: 4111111111111111,
		CardType:        user.CardVisa,
		Role:            auth.RoleUser,
	}))
	require.NoError(t, f.users.Create(ctx, &user.User{
		ID:         "vendor-1",
		UserName:   "Zen Stores",
		Email:      "vendor@zenstores.test",
		Role:       auth.RoleVendor,
		VendorName: "Zen Stores",
	}))
	require.NoError(t, f.transactions.Create(ctx, &transaction.Transaction{
		TransactionID:   1234567890,
		SenderAccNo:     111222333,
		SenderName:      "Asha",
		ReceiverName:    "Zen Stores",
		Amount:          499.99,
		Status:          transaction.StatusPaid,
		DebitCardNumber: 4111111111111111,
		TransactionDate: time.Now(),
	}))

	return f
}

func ashaIdentity() auth.Identity {
	return auth.Identity{UserID: "user-1", Email: "asha@example.com", Role: auth.RoleUser}
}

func validForm() Form {
	return Form{
		DigitalChannel:  "Mobile Banking",
		ComplaintType:   "Unauthorized transaction",
		TransactionID:   1234567890,
		Description:     "I did not authorize this payment to the merchant.",
		DebitCardNumber: 4111111111111111,
	}
}

func TestRegisterCreatesDispute(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	d, err := f.service.Register(ctx, ashaIdentity(), validForm())
	require.NoError(t, err)

	assert.Equal(t, StatusSubmitted, d.Status)
	assert.Equal(t, "asha@example.com", d.Email)
	assert.Equal(t, 499.99, d.Amount, "amount must come from the transaction")
	assert.Equal(t, user.CardVisa, d.CardType)
	assert.Equal(t, 7, d.AdminID)
	assert.GreaterOrEqual(t, d.TicketNumber, ticketMin)
	assert.LessOrEqual(t, d.TicketNumber, ticketMax)

	stored, err := f.store.FindByTicketNumber(ctx, d.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, d.ID, stored.ID)
}

func TestRegisterNotifiesUserAndAdmin(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	d, err := f.service.Register(ctx, ashaIdentity(), validForm())
	require.NoError(t, err)

	userNotes, err := f.notifications.ListByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	require.Len(t, userNotes, 1)
	assert.Contains(t, userNotes[0].Message, "submitted successfully")
	assert.Equal(t, d.TicketNumber, userNotes[0].TicketNumber)

	adminNotes, err := f.notifications.ListByEmail(ctx, "admin@brillianbank.test")
	require.NoError(t, err)
	require.Len(t, adminNotes, 1)
	assert.Contains(t, adminNotes[0].Message, "Asha has been raised the dispute")

	require.Len(t, f.mailer.Messages, 1)
	assert.Equal(t, "asha@example.com", f.mailer.Messages[0].To)
	assert.Equal(t, "Registered", f.mailer.Messages[0].Status)
}

func TestRegisterWithVendorNotifiesVendor(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	form := validForm()
	form.VendorName = "Zen Stores"

	d, err := f.service.Register(ctx, ashaIdentity(), form)
	require.NoError(t, err)
	assert.Equal(t, "Zen Stores", d.VendorName)

	vendorNotes, err := f.notifications.ListByEmail(ctx, "vendor@zenstores.test")
	require.NoError(t, err)
	require.Len(t, vendorNotes, 1)
	assert.Contains(t, vendorNotes[0].Message, "raised by Asha")

	var vendorMail bool
	for _, m := range f.mailer.Messages {
		if m.To == "vendor@zenstores.test" {
			vendorMail = true
			assert.Contains(t, m.Content, "raised a dispute on you")
		}
	}
	assert.True(t, vendorMail, "vendor must receive an email")
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, form *Form)
		wantErr error
	}{
		{
			name:    "unknown transaction",
			mutate:  func(_ *fixture, form *Form) { form.TransactionID = 9999999999 },
			wantErr: ErrTransactionNotFound,
		},
		{
			name:    "unknown debit card",
			mutate:  func(_ *fixture, form *Form) { form.DebitCardNumber = 4222222222222222 },
			wantErr: ErrDebitCardNotFound,
		},
		{
			name:    "unknown vendor",
			mutate:  func(_ *fixture, form *Form) { form.VendorName = "Nope Mart" },
			wantErr: ErrVendorNotFound,
		},
		{
			name: "duplicate submission",
			mutate: func(f *fixture, _ *Form) {
				_, err := f.service.Register(context.Background(), ashaIdentity(), validForm())
				require.NoError(t, err)
			},
			wantErr: ErrAlreadySubmitted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, time.Hour)
			form := validForm()
			tc.mutate(f, &form)

			_, err := f.service.Register(context.Background(), ashaIdentity(), form)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegisterWithoutAdmin(t *testing.T) {
	f := &fixture{
		store:         NewMemoryStore(),
		users:         user.NewMemoryStore(),
		transactions:  transaction.NewMemoryStore(),
		notifications: notification.NewMemoryStore(),
		mailer:        &mail.Recorder{},
	}
	f.service = NewService(f.store, f.users, f.transactions, f.notifications, f.mailer, time.Hour)

	_, err := f.service.Register(context.Background(), ashaIdentity(), validForm())
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestRegisterFailedTransactionAutoApproves(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, f.transactions.Create(ctx, &transaction.Transaction{
		TransactionID:   2222222222,
		SenderAccNo:     111222333,
		Amount:          75,
		Status:          transaction.StatusFailed,
		DebitCardNumber: 4111111111111111,
	}))

	form := validForm()
	form.TransactionID = 2222222222

	d, err := f.service.Register(ctx, ashaIdentity(), form)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, d.Status)

	require.Eventually(t, func() bool {
		got, err := f.store.FindByID(ctx, d.ID)
		return err == nil && got.Status == StatusApproved
	}, time.Second, 10*time.Millisecond)

	got, err := f.store.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ResolvedAt)

	var refundMail bool
	for _, m := range f.mailer.Messages {
		if strings.Contains(m.Content, "refunded to your bank account") {
			refundMail = true
		}
	}
	assert.True(t, refundMail, "refund email must be sent")
}

func TestResolveNotifiesCustomer(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	d, err := f.service.Register(ctx, ashaIdentity(), validForm())
	require.NoError(t, err)

	resolved, err := f.service.Resolve(ctx, d.ID, StatusRejected, "No evidence of fraud", 7)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, resolved.Status)
	assert.Equal(t, "No evidence of fraud", resolved.AdminRemarks)
	assert.NotNil(t, resolved.ResolvedAt)

	last := f.mailer.Messages[len(f.mailer.Messages)-1]
	assert.Equal(t, "asha@example.com", last.To)
	assert.Contains(t, last.Content, "rejected")
	assert.Contains(t, last.Content, "No evidence of fraud")
}

func TestResolveUnknownDispute(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.service.Resolve(context.Background(), "missing", StatusApproved, "", 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRespondClosesDisputeOnce(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	form := validForm()
	form.VendorName = "Zen Stores"
	d, err := f.service.Register(ctx, ashaIdentity(), form)
	require.NoError(t, err)

	closed, err := f.service.Respond(ctx, d.ID, "Refund issued via original payment method")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.Equal(t, "Refund issued via original payment method", closed.VendorResponse)

	_, err = f.service.Respond(ctx, d.ID, "Second response")
	assert.ErrorIs(t, err, ErrResponseExists)
}

func TestListForVendor(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	form := validForm()
	form.VendorName = "Zen Stores"
	_, err := f.service.Register(ctx, ashaIdentity(), form)
	require.NoError(t, err)

	disputes, err := f.service.ListForVendor(ctx, "vendor@zenstores.test")
	require.NoError(t, err)
	require.Len(t, disputes, 1)
	assert.Equal(t, "Zen Stores", disputes[0].VendorName)

	_, err = f.service.ListForVendor(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrVendorNotFound)
}

func TestFraudReport(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.service.Register(ctx, ashaIdentity(), validForm())
	require.NoError(t, err)

	report, err := f.service.FraudReport(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), "admin@brillianbank.test")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.ByStatus[StatusSubmitted])
	assert.Equal(t, 499.99, report.TotalAmount)

	last := f.mailer.Messages[len(f.mailer.Messages)-1]
	assert.Equal(t, "admin@brillianbank.test", last.To)
	assert.Equal(t, "Fraud Report", last.Subject)
}

func TestTicketNumbersAreUnique(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	seen := map[int]bool{}
	for i := 0; i < 25; i++ {
		ticket, err := f.service.generateTicketNumber(ctx)
		require.NoError(t, err)
		assert.False(t, seen[ticket])
		seen[ticket] = true
		require.NoError(t, f.store.Create(ctx, &Dispute{
			ID:           uuidLike(i),
			TicketNumber: ticket,
			Status:       StatusSubmitted,
			CreatedAt:    time.Now(),
		}))
	}
}

func uuidLike(i int) string {
	return strings.Repeat("0", 8) + "-" + string(rune('a'+i%26)) + "-dispute"
}
