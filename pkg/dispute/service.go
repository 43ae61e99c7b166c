package dispute

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/mail"
	"github.com/brillianbank/dispute-platform/pkg/notification"
	"github.com/brillianbank/dispute-platform/pkg/transaction"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

const (
	ticketMin = 100000
	ticketMax = 999999
)

// Form carries the fields collected for a new dispute. CardType is filled
// from the cardholder record when absent; Amount comes from the disputed
// transaction, never from the caller.
type Form struct {
	DigitalChannel  string
	ComplaintType   string
	TransactionID   int64
	Description     string
	DebitCardNumber int64
	Amount          float64
	VendorName      string
	CardType        string
}

// Service implements the dispute workflow.
type Service struct {
	store         Store
	users         user.Store
	transactions  transaction.Store
	notifications notification.Store
	mailer        mail.Mailer
	refundDelay   time.Duration
}

// NewService creates a dispute service. refundDelay is how long a
// failed-transaction dispute waits before auto-approval.
func NewService(store Store, users user.Store, transactions transaction.Store,
	notifications notification.Store, mailer mail.Mailer, refundDelay time.Duration) *Service {
	return &Service{
		store:         store,
		users:         users,
		transactions:  transactions,
		notifications: notifications,
		mailer:        mailer,
		refundDelay:   refundDelay,
	}
}

// Register files a dispute on behalf of the authenticated identity.
// The transaction must exist and not already be disputed; the debit card
// must belong to a known account; a named vendor must exist. The vendor,
// the customer, and the admin are all notified. Failed transactions are
// auto-approved for refund after the configured delay.
func (s *Service) Register(ctx context.Context, identity auth.Identity, form Form) (*Dispute, error) {
	admin, err := s.users.FindAdmin(ctx)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	txn, err := s.transactions.FindByID(ctx, form.TransactionID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}

	if _, err := s.store.FindByTransactionID(ctx, form.TransactionID); err == nil {
		return nil, ErrAlreadySubmitted
	}

	holder, err := s.users.FindByDebitCard(ctx, form.DebitCardNumber)
	if err != nil {
		return nil, ErrDebitCardNotFound
	}
	if form.CardType == "" {
		form.CardType = holder.CardType
	}

	customer, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}

	ticketNumber, err := s.generateTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	if form.VendorName != "" {
		vendor, err := s.users.FindVendor(ctx, form.VendorName)
		if err != nil {
			return nil, ErrVendorNotFound
		}
		s.notifyVendor(ctx, vendor, customer, form, ticketNumber, txn.Amount)
	}

	d := &Dispute{
		ID:              uuid.NewString(),
		DigitalChannel:  form.DigitalChannel,
		ComplaintType:   form.ComplaintType,
		TransactionID:   form.TransactionID,
		Description:     form.Description,
		DebitCardNumber: form.DebitCardNumber,
		Email:           identity.Email,
		Status:          StatusSubmitted,
		TicketNumber:    ticketNumber,
		CardType:        form.CardType,
		AdminID:         admin.AdminID,
		Amount:          txn.Amount,
		VendorName:      form.VendorName,
		CreatedAt:       time.Now(),
	}

	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}

	s.createNotification(ctx, identity.Email, ticketNumber, customer.UserName,
		fmt.Sprintf("Dear %s, Your Complaint/Dispute has been submitted successfully.", customer.UserName),
		form.ComplaintType)

	raisedUpon := form.VendorName
	if raisedUpon == "" {
		raisedUpon = fmt.Sprintf("Transaction No : %d", form.TransactionID)
	}
	s.createNotification(ctx, admin.Email, ticketNumber, customer.UserName,
		fmt.Sprintf("%s has been raised the dispute/complaint upon %s.", customer.UserName, raisedUpon),
		form.ComplaintType)

	s.sendMail(ctx, mail.Message{
		To:           identity.Email,
		CustomerName: customer.UserName,
		TicketNumber: ticketNumber,
		MerchantName: raisedUpon,
		Amount:       txn.Amount,
		Status:       "Registered",
		Content: "Your Complaint/Dispute has been submitted successfully. " +
			"Our team will review the dispute and get back to you within the next 7-10 business days.",
	})

	slog.Info("dispute registered",
		"ticket_number", ticketNumber, "transaction_id", form.TransactionID, "user_id", identity.UserID)

	if txn.Status == transaction.StatusFailed {
		s.scheduleRefundApproval(d.ID, identity.Email, ticketNumber, customer.UserName, txn.Amount)
	}

	return d, nil
}

// scheduleRefundApproval auto-approves a failed-transaction dispute after
// the configured delay, mirroring the bank's automatic refund policy.
func (s *Service) scheduleRefundApproval(disputeID, email string, ticketNumber int, userName string, amount float64) {
	time.AfterFunc(s.refundDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.approveRefund(ctx, disputeID, email, ticketNumber, userName, amount)
	})
}

func (s *Service) approveRefund(ctx context.Context, disputeID, email string, ticketNumber int, userName string, amount float64) {
	d, err := s.store.UpdateStatus(ctx, disputeID, StatusApproved, "Automatic refund for failed transaction", 0)
	if err != nil {
		slog.Error("refund auto-approval failed", "dispute_id", disputeID, "error", err)
		return
	}

	merchant := d.VendorName
	if merchant == "" {
		merchant = fmt.Sprintf("Transaction Id : %d", d.TransactionID)
	}
	s.sendMail(ctx, mail.Message{
		To:           email,
		CustomerName: userName,
		TicketNumber: ticketNumber,
		MerchantName: merchant,
		Amount:       amount,
		Status:       StatusApproved,
		Content:      fmt.Sprintf("Your Money %.2f will be refunded to your bank account within 3 working days", amount),
	})
	s.createNotification(ctx, email, ticketNumber, userName,
		fmt.Sprintf("Your transaction has failed. Your money %.2f will be refunded to your bank account within 3 working days.", amount),
		"failed transaction")

	slog.Info("dispute auto-approved for refund", "ticket_number", ticketNumber)
}

// Resolve records an admin decision on a dispute and notifies the customer.
func (s *Service) Resolve(ctx context.Context, disputeID, status, remarks string, adminID int) (*Dispute, error) {
	d, err := s.store.UpdateStatus(ctx, disputeID, status, remarks, adminID)
	if err != nil {
		return nil, err
	}

	customer, err := s.users.FindByEmail(ctx, d.Email)
	if err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}

	merchant := d.VendorName
	if merchant == "" {
		merchant = fmt.Sprintf("Transaction Id : %d", d.TransactionID)
	}
	content := fmt.Sprintf("Your Dispute/Complaint has been %s. Admin Response : %s", status, remarks)

	s.sendMail(ctx, mail.Message{
		To:           d.Email,
		CustomerName: customer.UserName,
		TicketNumber: d.TicketNumber,
		MerchantName: merchant,
		Amount:       d.Amount,
		Status:       status,
		Content:      content,
	})
	s.createNotification(ctx, d.Email, d.TicketNumber, customer.UserName, content, d.ComplaintType)

	slog.Info("dispute resolved",
		"ticket_number", d.TicketNumber, "status", status, "resolved_by", adminID)
	return d, nil
}

// Respond records a vendor's one-time response and closes the dispute.
func (s *Service) Respond(ctx context.Context, disputeID, response string) (*Dispute, error) {
	d, err := s.store.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.VendorResponse != "" {
		return nil, ErrResponseExists
	}

	customer, err := s.users.FindByEmail(ctx, d.Email)
	if err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}

	d, err = s.store.SetVendorResponse(ctx, disputeID, response)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("Your dispute has been resolved. Vendor response: %s", response)
	s.sendMail(ctx, mail.Message{
		To:           d.Email,
		CustomerName: customer.UserName,
		TicketNumber: d.TicketNumber,
		MerchantName: d.VendorName,
		Amount:       d.Amount,
		Status:       StatusClosed,
		Content:      content,
	})
	s.createNotification(ctx, d.Email, d.TicketNumber, customer.UserName, content, "resolved")

	return d, nil
}

// ListForEmail returns the customer's disputes, newest first.
func (s *Service) ListForEmail(ctx context.Context, email string) ([]*Dispute, error) {
	return s.store.List(ctx, Filter{Email: email})
}

// ListForVendor returns disputes raised against the vendor with the given
// account email, newest first.
func (s *Service) ListForVendor(ctx context.Context, vendorEmail string) ([]*Dispute, error) {
	vendor, err := s.users.FindByEmail(ctx, vendorEmail)
	if err != nil {
		return nil, ErrVendorNotFound
	}
	return s.store.List(ctx, Filter{VendorName: vendor.VendorName})
}

// ListAll returns every dispute, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Dispute, error) {
	return s.store.List(ctx, Filter{})
}

// FindByTicketNumber returns the dispute with the given ticket number.
func (s *Service) FindByTicketNumber(ctx context.Context, ticketNumber int) (*Dispute, error) {
	return s.store.FindByTicketNumber(ctx, ticketNumber)
}

// Report summarizes dispute activity over a window.
type Report struct {
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	TotalAmount float64        `json:"totalAmount"`
}

// FraudReport aggregates dispute activity over a window and mails the
// report to the requesting admin.
func (s *Service) FraudReport(ctx context.Context, from, to time.Time, adminEmail string) (*Report, error) {
	counts, totalAmount, err := s.store.StatusCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &Report{From: from, To: to, ByStatus: counts, TotalAmount: totalAmount}
	for _, c := range counts {
		report.Total += c
	}

	s.sendMail(ctx, mail.Message{
		To:      adminEmail,
		Subject: "Fraud Report",
		Status:  "Report",
		Content: fmt.Sprintf("Fraud report %s to %s: %d disputes totaling %.2f.",
			from.Format("2006-01-02"), to.Format("2006-01-02"), report.Total, report.TotalAmount),
	})

	return report, nil
}

// generateTicketNumber draws random 6-digit tickets until one is unused.
func (s *Service) generateTicketNumber(ctx context.Context) (int, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(ticketMax-ticketMin+1))
		if err != nil {
			return 0, fmt.Errorf("generating ticket number: %w", err)
		}
		ticket := int(n.Int64()) + ticketMin

		exists, err := s.store.TicketNumberExists(ctx, ticket)
		if err != nil {
			return 0, err
		}
		if !exists {
			return ticket, nil
		}
	}
}

func (s *Service) notifyVendor(ctx context.Context, vendor, customer *user.User, form Form, ticketNumber int, amount float64) {
	message := fmt.Sprintf("%s has raised a dispute on you. Complaint Type: %s. User's Complaint: %s",
		customer.UserName, form.ComplaintType, form.Description)

	s.sendMail(ctx, mail.Message{
		To:           vendor.Email,
		CustomerName: form.VendorName,
		TicketNumber: ticketNumber,
		MerchantName: form.VendorName,
		Amount:       amount,
		Status:       "Raised upon You",
		Content:      message,
	})
	s.createNotification(ctx, vendor.Email, ticketNumber, form.VendorName,
		fmt.Sprintf("A dispute has been raised by %s upon you.", customer.UserName),
		form.ComplaintType)
}

// sendMail delivers best-effort: a mail failure never blocks the workflow.
func (s *Service) sendMail(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("sending dispute email failed", "to", msg.To, "error", err)
	}
}

// createNotification inserts best-effort: a failure never blocks the workflow.
func (s *Service) createNotification(ctx context.Context, email string, ticketNumber int, userName, message, complaintType string) {
	err := s.notifications.Insert(ctx, &notification.Notification{
		Email:         email,
		ComplaintType: complaintType,
		TicketNumber:  ticketNumber,
		UserName:      userName,
		Message:       message,
	})
	if err != nil {
		slog.Error("creating notification failed", "email", email, "error", err)
	}
}
