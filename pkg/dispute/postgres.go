package dispute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// disputeColumns lists columns returned by dispute SELECT queries.
var disputeColumns = []string{
	"id", "digital_channel", "complaint_type", "transaction_id", "description",
	"debit_card_number", "email", "status", "ticket_number", "card_type",
	"admin_id", "COALESCE(admin_remarks, '')", "COALESCE(resolved_by, 0)",
	"resolved_at", "amount", "COALESCE(vendor_name, '')",
	"COALESCE(vendor_response, '')", "created_at",
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL dispute store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a dispute.
func (s *PostgresStore) Create(ctx context.Context, d *Dispute) error {
	query := `
		INSERT INTO disputes
		(id, digital_channel, complaint_type, transaction_id, description, debit_card_number, email, status, ticket_number, card_type, admin_id, amount, vendor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.DigitalChannel, d.ComplaintType, d.TransactionID, d.Description,
		d.DebitCardNumber, d.Email, d.Status, d.TicketNumber, d.CardType,
		d.AdminID, d.Amount, d.VendorName, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting dispute: %w", err)
	}
	return nil
}

// FindByID retrieves a dispute by id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Dispute, error) {
	return s.queryOne(ctx, sq.Eq{"id": id})
}

// FindByTransactionID retrieves the dispute filed for a transaction.
func (s *PostgresStore) FindByTransactionID(ctx context.Context, transactionID int64) (*Dispute, error) {
	return s.queryOne(ctx, sq.Eq{"transaction_id": transactionID})
}

// FindByTicketNumber retrieves a dispute by ticket number.
func (s *PostgresStore) FindByTicketNumber(ctx context.Context, ticketNumber int) (*Dispute, error) {
	return s.queryOne(ctx, sq.Eq{"ticket_number": ticketNumber})
}

// List returns disputes matching the filter, newest first.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*Dispute, error) {
	builder := psq.Select(disputeColumns...).
		From("disputes").
		OrderBy("created_at DESC")

	if f.Email != "" {
		builder = builder.Where(sq.Eq{"email": f.Email})
	}
	if f.VendorName != "" {
		builder = builder.Where(sq.Eq{"vendor_name": f.VendorName})
	}
	if f.Status != "" {
		builder = builder.Where(sq.Eq{"status": f.Status})
	}
	if !f.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		builder = builder.Where(sq.LtOrEq{"created_at": f.To})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building dispute query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing disputes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows close

	var out []*Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatus resolves a dispute and returns the updated record.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id, status, remarks string, adminID int) (*Dispute, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE disputes
		SET status = $1, admin_remarks = $2, resolved_by = $3, resolved_at = now()
		WHERE id = $4`, status, remarks, adminID, id)
	if err != nil {
		return nil, fmt.Errorf("updating dispute status: %w", err)
	}
	return s.FindByID(ctx, id)
}

// SetVendorResponse records the vendor's response and closes the dispute.
func (s *PostgresStore) SetVendorResponse(ctx context.Context, id, response string) (*Dispute, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE disputes
		SET vendor_response = $1, status = 'closed', resolved_at = now()
		WHERE id = $2`, response, id)
	if err != nil {
		return nil, fmt.Errorf("setting vendor response: %w", err)
	}
	return s.FindByID(ctx, id)
}

// TicketNumberExists reports whether a ticket number is already assigned.
func (s *PostgresStore) TicketNumberExists(ctx context.Context, ticketNumber int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM disputes WHERE ticket_number = $1)`, ticketNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking ticket number: %w", err)
	}
	return exists, nil
}

// StatusCounts aggregates dispute counts per status and the total disputed
// amount over the window.
func (s *PostgresStore) StatusCounts(ctx context.Context, from, to time.Time) (map[string]int, float64, error) {
	query, args, err := psq.Select("status", "COUNT(*)", "COALESCE(SUM(amount), 0)").
		From("disputes").
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.LtOrEq{"created_at": to}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building report query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregating disputes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows close

	counts := make(map[string]int)
	var totalAmount float64
	for rows.Next() {
		var status string
		var count int
		var amount float64
		if err := rows.Scan(&status, &count, &amount); err != nil {
			return nil, 0, fmt.Errorf("scanning report row: %w", err)
		}
		counts[status] = count
		totalAmount += amount
	}
	return counts, totalAmount, rows.Err()
}

func (s *PostgresStore) queryOne(ctx context.Context, where sq.Eq) (*Dispute, error) {
	query, args, err := psq.Select(disputeColumns...).From("disputes").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building dispute query: %w", err)
	}

	d, err := scanDispute(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispute(row rowScanner) (*Dispute, error) {
	var d Dispute
	var resolvedAt sql.NullTime
	err := row.Scan(
		&d.ID, &d.DigitalChannel, &d.ComplaintType, &d.TransactionID,
		&d.Description, &d.DebitCardNumber, &d.Email, &d.Status,
		&d.TicketNumber, &d.CardType, &d.AdminID, &d.AdminRemarks,
		&d.ResolvedBy, &resolvedAt, &d.Amount, &d.VendorName,
		&d.VendorResponse, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning dispute: %w", err)
	}
	if resolvedAt.Valid {
		d.ResolvedAt = &resolvedAt.Time
	}
	return &d, nil
}

// Verify interface compliance.
var _ Store = (*PostgresStore)(nil)
