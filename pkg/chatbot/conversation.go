// Package chatbot implements the dispute registration assistant: a
// per-user scripted dialogue that collects dispute details step by step,
// validates each answer, and hands the completed form to the dispute
// workflow.
package chatbot

import (
	"context"
	"time"
)

// Turn is one message in a conversation, from the user or the bot.
type Turn struct {
	Text         string `json:"text"`
	Sender       string `json:"sender"`
	IsError      bool   `json:"isError,omitempty"`
	TicketNumber int    `json:"ticketNumber,omitempty"`
}

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// FormData accumulates validated answers across steps.
type FormData struct {
	DigitalChannel  string  `json:"digitalChannel,omitempty"`
	ComplaintType   string  `json:"complaintType,omitempty"`
	TransactionID   int64   `json:"transactionId,omitempty"`
	Description     string  `json:"description,omitempty"`
	DebitCardNumber int64   `json:"debitCardNumber,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	VendorName      string  `json:"vendorName,omitempty"`
}

// Conversation is the per-user dialogue state: the current step, the
// collected form, and the full message history.
type Conversation struct {
	UserID       string    `json:"userId"`
	Step         Step      `json:"step"`
	Form         FormData  `json:"form"`
	History      []Turn    `json:"history"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// reset returns the conversation to the start step with an empty form.
// History is retained.
func (c *Conversation) reset() {
	c.Step = StepStart
	c.Form = FormData{}
}

// Store persists conversations keyed by user id. Idle conversations
// expire after the store's TTL.
type Store interface {
	// Get retrieves a conversation. Returns nil, nil if not found or
	// expired.
	Get(ctx context.Context, userID string) (*Conversation, error)

	// Put saves a conversation and refreshes its expiry.
	Put(ctx context.Context, c *Conversation) error

	// Delete removes a conversation.
	Delete(ctx context.Context, userID string) error

	// Cleanup removes expired conversations.
	Cleanup(ctx context.Context) error

	// Close stops background routines and releases resources.
	Close() error
}
