// Package notification provides in-app notifications tied to disputes.
package notification

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a notification does not exist.
var ErrNotFound = errors.New("notification not found")

// Notification is an in-app message shown to a user, admin, or vendor.
type Notification struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	ComplaintType string    `json:"complaintType"`
	TicketNumber  int       `json:"ticketNumber"`
	UserName      string    `json:"userName"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store persists notifications.
type Store interface {
	Insert(ctx context.Context, n *Notification) error
	// ListByEmail returns the recipient's notifications, newest first.
	ListByEmail(ctx context.Context, email string) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
}
