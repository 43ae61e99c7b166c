package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL notification store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert persists a notification, assigning an id and timestamp when unset.
func (s *PostgresStore) Insert(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO notifications
		(id, email, complaint_type, ticket_number, user_name, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.Email, n.ComplaintType, n.TicketNumber, n.UserName,
		n.Message, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListByEmail returns the recipient's notifications, newest first.
func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]*Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, complaint_type, ticket_number, user_name, message, is_read, created_at
		FROM notifications WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows close

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID, &n.Email, &n.ComplaintType, &n.TicketNumber,
			&n.UserName, &n.Message, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead marks a notification as read.
func (s *PostgresStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking notification update: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*PostgresStore)(nil)
