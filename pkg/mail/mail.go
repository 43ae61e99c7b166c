// Package mail provides outbound email delivery for dispute notices.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is a dispute-related email.
type Message struct {
	To           string
	Subject      string
	CustomerName string
	TicketNumber int
	MerchantName string
	Amount       float64
	Status       string
	Content      string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// disputeTemplate renders the dispute-status email body.
var disputeTemplate = template.Must(template.New("dispute").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Dispute {{.Status}}</title>
</head>
<body>
<div class="container">
  <div class="header">
    <h2>Dispute Has Been {{.Status}}</h2>
    <p>Thank you for contacting us. It's Regarding your dispute request.</p>
  </div>
  <div class="content">
    <p>Dear <strong>{{.CustomerName}}</strong>,</p>
    <p>{{.Content}}</p>
    <div class="details">
      <p><strong>Ticket Number:</strong> {{.TicketNumber}}</p>
      <p><strong>Transaction Amount:</strong> {{.Amount}}</p>
      <p><strong>Complaint On:</strong> {{.MerchantName}}</p>
    </div>
    <p>If you have any questions or need further assistance, feel free to contact us at <strong>{{.Helpline}}</strong>.</p>
  </div>
  <div class="footer">
    <p>Best regards,</p>
    <p><strong>{{.BankName}}</strong><br>{{.Helpline}}</p>
  </div>
</div>
</body>
</html>`))

type templateData struct {
	Message
	BankName string
	Helpline string
}

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BankName string
	Helpline string
}

// SMTPMailer delivers mail over SMTP with the bank's dispute template.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTP mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send renders and delivers the message.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	var body bytes.Buffer
	data := templateData{
		Message:  msg,
		BankName: m.cfg.BankName,
		Helpline: m.cfg.Helpline,
	}
	if data.MerchantName == "" {
		data.MerchantName = "N/A"
	}
	if err := disputeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering email: %w", err)
	}

	subject := msg.Subject
	if subject == "" {
		subject = fmt.Sprintf("Dispute %s - Ticket #%d", msg.Status, msg.TicketNumber)
	}

	var raw strings.Builder
	raw.WriteString("From: " + m.cfg.From + "\r\n")
	raw.WriteString("To: " + msg.To + "\r\n")
	raw.WriteString("Subject: " + subject + "\r\n")
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	raw.WriteString("\r\n")
	raw.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(raw.String())); err != nil {
		return fmt.Errorf("sending email to %s: %w", msg.To, err)
	}

	slog.Info("email sent", "to", msg.To, "ticket_number", msg.TicketNumber, "status", msg.Status)
	return nil
}

// Noop is a Mailer that logs and discards messages. Used in development
// and wherever delivery failures must not block the dispute workflow.
type Noop struct{}

// Send logs the message and returns nil.
func (Noop) Send(_ context.Context, msg Message) error {
	slog.Debug("email suppressed", "to", msg.To, "ticket_number", msg.TicketNumber)
	return nil
}

// Recorder is a Mailer that captures messages for tests.
type Recorder struct {
	Messages []Message
}

// Send records the message.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.Messages = append(r.Messages, msg)
	return nil
}

// Verify interface compliance.
var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = Noop{}
	_ Mailer = (*Recorder)(nil)
)
