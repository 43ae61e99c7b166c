package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const txnColumns = `transaction_id, sender_acc_no, sender_name, receiver_acc_no,
	receiver_name, amount, digital_channel, status, debit_card_number, transaction_date`

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL transaction store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a transaction.
func (s *PostgresStore) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions
		(transaction_id, sender_acc_no, sender_name, receiver_acc_no, receiver_name, amount, digital_channel, status, debit_card_number, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.TransactionID, t.SenderAccNo, t.SenderName, t.ReceiverAccNo,
		t.ReceiverName, t.Amount, t.DigitalChannel, t.Status,
		t.DebitCardNumber, t.TransactionDate,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// FindByID retrieves a transaction by its 10-digit id.
func (s *PostgresStore) FindByID(ctx context.Context, transactionID int64) (*Transaction, error) {
	return s.queryOne(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE transaction_id = $1`, transactionID)
}

// FindFailedByID returns the transaction only when its status is failed.
func (s *PostgresStore) FindFailedByID(ctx context.Context, transactionID int64) (*Transaction, error) {
	return s.queryOne(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE transaction_id = $1 AND status = 'failed'`, transactionID)
}

// ListByAccount returns transactions the account sent or received, newest first.
func (s *PostgresStore) ListByAccount(ctx context.Context, accNo int64) ([]*Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+txnColumns+` FROM transactions
		 WHERE sender_acc_no = $1 OR receiver_acc_no = $1
		 ORDER BY transaction_date DESC`, accNo)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows close

	var txns []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.TransactionID, &t.SenderAccNo, &t.SenderName, &t.ReceiverAccNo,
			&t.ReceiverName, &t.Amount, &t.DigitalChannel, &t.Status,
			&t.DebitCardNumber, &t.TransactionDate,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*Transaction, error) {
	var t Transaction
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&t.TransactionID, &t.SenderAccNo, &t.SenderName, &t.ReceiverAccNo,
		&t.ReceiverName, &t.Amount, &t.DigitalChannel, &t.Status,
		&t.DebitCardNumber, &t.TransactionDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning transaction: %w", err)
	}
	return &t, nil
}

// Verify interface compliance.
var _ Store = (*PostgresStore)(nil)
