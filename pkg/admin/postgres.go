package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const requestColumns = "id, vendor_name, email, transaction_id, status, created_at"

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL API key request store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a request.
func (s *PostgresStore) Create(ctx context.Context, r *APIKeyRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_key_requests (id, vendor_name, email, transaction_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.VendorName, r.Email, r.TransactionID, r.Status, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting api key request: %w", err)
	}
	return nil
}

// FindByID retrieves a request by id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*APIKeyRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM api_key_requests WHERE id = $1`, id)

	var r APIKeyRequest
	err := row.Scan(&r.ID, &r.VendorName, &r.Email, &r.TransactionID, &r.Status, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("scanning api key request: %w", err)
	}
	return &r, nil
}

// PendingExists reports whether the transaction already has a pending request.
func (s *PostgresStore) PendingExists(ctx context.Context, transactionID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM api_key_requests
			WHERE transaction_id = $1 AND status = 'pending'
		)`, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking pending request: %w", err)
	}
	return exists, nil
}

// UpdateStatus moves a request to a new status.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_key_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating api key request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating api key request: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Delete removes a request.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_key_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting api key request: %w", err)
	}
	return nil
}

// List returns all requests, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*APIKeyRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM api_key_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing api key requests: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup after read-only query

	var out []*APIKeyRequest
	for rows.Next() {
		var r APIKeyRequest
		if err := rows.Scan(&r.ID, &r.VendorName, &r.Email, &r.TransactionID, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning api key request: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Verify interface compliance.
var _ Store = (*PostgresStore)(nil)
