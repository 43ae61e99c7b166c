package user

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRows = []string{
	"id", "user_name", "acc_no", "admin_id", "cuid", "email", "branch_code",
	"branch_name", "password_hash", "debit_card_number", "card_type", "role",
	"vendor_name", "created_at",
}

func aliceRow() *sqlmock.Rows {
	return sqlmock.NewRows(userRows).AddRow(
		"u-1", "Alice", int64(100000000001), 0, int64(10000001), "alice@example.com",
		"BR001", "Main", "hash", int64(4111111111111111), CardVisa, "user",
		"", time.Now(),
	)
}

func TestPostgresStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-1", "Alice", int64(100000000001), 0, int64(10000001),
			"alice@example.com", "BR001", "Main", "hash",
			int64(4111111111111111), CardVisa, "user", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Create(t.Context(), &User{
		ID: "u-1", UserName: "Alice", AccNo: 100000000001, CUID: 10000001,
		Email: "alice@example.com", BranchCode: "BR001", BranchName: "Main",
		PasswordHash: "hash", DebitCardNumber: 4111111111111111,
		CardType: CardVisa, Role: "user",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(aliceRow())

	u, err := store.FindByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "Alice", u.UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userRows))

	_, err = store.FindByEmail(t.Context(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_FindAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE role = 'admin'").
		WillReturnRows(aliceRow())

	u, err := store.FindAdmin(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
}

func TestPostgresStore_FindVendor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE role = 'vendor' AND vendor_name").
		WithArgs("acme-store").
		WillReturnRows(sqlmock.NewRows(userRows))

	_, err = store.FindVendor(t.Context(), "acme-store")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_UpdatePassword_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.UpdatePassword(t.Context(), "ghost", "newhash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_UpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck // sqlmock db close error is inconsequential in tests.

	store := NewPostgresStore(db)
	mock.ExpectExec("UPDATE users SET user_name").
		WithArgs("Alice B", "BR001", "Downtown", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.UpdateProfile(t.Context(), &User{
		ID: "u-1", UserName: "Alice B", BranchCode: "BR001", BranchName: "Downtown",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
