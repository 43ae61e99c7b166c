package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// userColumns lists columns returned by user SELECT queries.
const userColumns = `id, user_name, acc_no, COALESCE(admin_id, 0), cuid, email, branch_code,
	branch_name, password_hash, debit_card_number, card_type, role,
	COALESCE(vendor_name, ''), created_at`

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new user.
func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users
		(id, user_name, acc_no, admin_id, cuid, email, branch_code, branch_name, password_hash, debit_card_number, card_type, role, vendor_name)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.UserName, u.AccNo, u.AdminID, u.CUID, u.Email,
		u.BranchCode, u.BranchName, u.PasswordHash, u.DebitCardNumber,
		u.CardType, u.Role, u.VendorName,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail retrieves a user by email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByDebitCard retrieves the holder of a debit card number.
func (s *PostgresStore) FindByDebitCard(ctx context.Context, debitCardNumber int64) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE debit_card_number = $1`, debitCardNumber)
}

// FindByAccNo retrieves a user by account number.
func (s *PostgresStore) FindByAccNo(ctx context.Context, accNo int64) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE acc_no = $1`, accNo)
}

// FindAdmin returns any user with the admin role.
func (s *PostgresStore) FindAdmin(ctx context.Context) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'admin' LIMIT 1`)
}

// FindVendor retrieves a vendor account by vendor name.
func (s *PostgresStore) FindVendor(ctx context.Context, vendorName string) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'vendor' AND vendor_name = $1`, vendorName)
}

// UpdatePassword replaces a user's password hash.
func (s *PostgresStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking password update: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile persists the profile fields of u.
func (s *PostgresStore) UpdateProfile(ctx context.Context, u *User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET user_name = $1, branch_code = $2, branch_name = $3, updated_at = now() WHERE id = $4`,
		u.UserName, u.BranchCode, u.BranchName, u.ID)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking profile update: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users.
func (s *PostgresStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows close

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.UserName, &u.AccNo, &u.AdminID, &u.CUID, &u.Email,
		&u.BranchCode, &u.BranchName, &u.PasswordHash, &u.DebitCardNumber,
		&u.CardType, &u.Role, &u.VendorName, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// Verify interface compliance.
var _ Store = (*PostgresStore)(nil)
