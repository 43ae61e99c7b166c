package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/dispute"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

// Registrar is the outbound bridge to the dispute workflow.
type Registrar interface {
	Register(ctx context.Context, identity auth.Identity, form dispute.Form) (*dispute.Dispute, error)
}

// Reply is the bot's answer to one message.
type Reply struct {
	Message         string `json:"message"`
	ValidationError bool   `json:"validationError,omitempty"`
	Success         bool   `json:"success,omitempty"`
	TicketNumber    int    `json:"ticketNumber,omitempty"`
}

// Service orchestrates conversations: it dispatches each message to the
// handler for the session's current step and serializes turns per user so
// concurrent messages cannot interleave session writes.
type Service struct {
	store     Store
	users     user.Store
	registrar Registrar

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the chatbot service.
func NewService(store Store, users user.Store, registrar Registrar) *Service {
	return &Service{
		store:     store,
		users:     users,
		registrar: registrar,
		locks:     make(map[string]*sync.Mutex),
	}
}

// ProcessMessage handles one inbound message for the user. The first
// message only opens the conversation and returns the welcome prompt;
// later messages are dispatched to the current step's handler.
func (s *Service) ProcessMessage(ctx context.Context, identity auth.Identity, message string) (*Reply, error) {
	unlock := s.lockUser(identity.UserID)
	defer unlock()

	conv, err := s.store.Get(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return s.openConversation(ctx, identity)
	}

	conv.History = append(conv.History, Turn{Text: message, Sender: SenderUser})
	conv.LastActiveAt = time.Now()

	reply := s.handleStep(ctx, identity, conv, message)

	conv.History = append(conv.History, Turn{
		Text:         reply.Message,
		Sender:       SenderBot,
		IsError:      reply.ValidationError,
		TicketNumber: reply.TicketNumber,
	})

	if err := s.store.Put(ctx, conv); err != nil {
		return nil, err
	}
	return reply, nil
}

// StartConversation discards any existing session and opens a fresh one
// with empty history.
func (s *Service) StartConversation(ctx context.Context, identity auth.Identity) (*Reply, error) {
	unlock := s.lockUser(identity.UserID)
	defer unlock()

	return s.openConversation(ctx, identity)
}

// ResetConversation soft-resets the session to the start step with an
// empty form. History survives so the user keeps their transcript. A
// missing session is opened fresh instead.
func (s *Service) ResetConversation(ctx context.Context, identity auth.Identity) (*Reply, error) {
	unlock := s.lockUser(identity.UserID)
	defer unlock()

	conv, err := s.store.Get(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return s.openConversation(ctx, identity)
	}

	conv.reset()
	conv.LastActiveAt = time.Now()
	conv.History = append(conv.History, Turn{Text: promptWelcome, Sender: SenderBot})
	if err := s.store.Put(ctx, conv); err != nil {
		return nil, err
	}
	return &Reply{Message: promptWelcome}, nil
}

// HasActiveConversation reports whether the user has a live session.
func (s *Service) HasActiveConversation(ctx context.Context, userID string) (bool, error) {
	conv, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return conv != nil, nil
}

// Messages returns the session's transcript in chronological order, or
// an empty slice when no session exists.
func (s *Service) Messages(ctx context.Context, userID string) ([]Turn, error) {
	conv, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []Turn{}, nil
	}
	return conv.History, nil
}

// EndConversation soft-resets the session and returns the closing
// message. Calling it without a session is a no-op beyond the message.
func (s *Service) EndConversation(ctx context.Context, userID string) (*Reply, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	conv, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		conv.reset()
		if err := s.store.Put(ctx, conv); err != nil {
			return nil, err
		}
	}
	return &Reply{Message: promptGoodbye}, nil
}

// Close releases the conversation store.
func (s *Service) Close() error {
	return s.store.Close()
}

// openConversation verifies the user still exists, creates a fresh
// session at the start step, and returns the welcome prompt.
func (s *Service) openConversation(ctx context.Context, identity auth.Identity) (*Reply, error) {
	if _, err := s.users.FindByID(ctx, identity.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return &Reply{Message: promptUserNotFound}, nil
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	now := time.Now()
	conv := &Conversation{
		UserID:       identity.UserID,
		Step:         StepStart,
		History:      []Turn{{Text: promptWelcome, Sender: SenderBot}},
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.store.Put(ctx, conv); err != nil {
		return nil, err
	}
	return &Reply{Message: promptWelcome}, nil
}

// handleStep advances the dialogue by exactly one step. A validation
// failure keeps the step and the form unchanged.
func (s *Service) handleStep(ctx context.Context, identity auth.Identity, conv *Conversation, message string) *Reply {
	switch conv.Step {
	case StepStart:
		answer, verr := parseYesNo(message)
		if verr != nil {
			return invalid(verr)
		}
		if answer != "yes" {
			conv.reset()
			return &Reply{Message: promptGoodbye}
		}
		conv.Step = StepDigitalChannel
		return &Reply{Message: promptDigitalChannel}

	case StepDigitalChannel:
		value, verr := requireText(message, "Digital channel", 0)
		if verr != nil {
			return invalid(verr)
		}
		conv.Form.DigitalChannel = value
		conv.Step = StepComplaintType
		return &Reply{Message: promptComplaintType}

	case StepComplaintType:
		value, verr := requireText(message, "Complaint type", 0)
		if verr != nil {
			return invalid(verr)
		}
		conv.Form.ComplaintType = value
		conv.Step = StepTransactionID
		return &Reply{Message: promptTransactionID}

	case StepTransactionID:
		id, verr := parseTransactionID(message)
		if verr != nil {
			return invalid(verr)
		}
		conv.Form.TransactionID = id
		conv.Step = StepDescription
		return &Reply{Message: promptDescription}

	case StepDescription:
		value, verr := requireText(message, "Description", 10)
		if verr != nil {
			return invalid(verr)
		}
		conv.Form.Description = value
		conv.Step = StepDebitCardNumber
		return &Reply{Message: promptDebitCard}

	case StepDebitCardNumber:
		card, verr := parseDebitCard(message)
		if verr != nil {
			return invalid(verr)
		}
		conv.Form.DebitCardNumber = card
		conv.Step = StepAmount
		return &Reply{Message: promptAmount}

	case StepAmount:
		amount, verr := parseAmount(message)
		if verr != nil {
			return invalid(verr)
		}
		conv.Form.Amount = amount
		conv.Step = StepVendorChoice
		return &Reply{Message: promptVendorChoice}

	case StepVendorChoice:
		answer, verr := parseYesNo(message)
		if verr != nil {
			return invalid(verr)
		}
		if answer == "yes" {
			conv.Step = StepVendorName
			return &Reply{Message: promptVendorName}
		}
		return s.submit(ctx, identity, conv)

	case StepVendorName:
		conv.Form.VendorName = trimOrEmpty(message)
		return s.submit(ctx, identity, conv)

	default:
		// Unknown step: restart the dialogue.
		conv.reset()
		return &Reply{Message: promptWelcome}
	}
}

// submit hands the completed form to the dispute workflow. The step and
// form reset regardless of the outcome, so a failed submission restarts
// the flow rather than retrying mid-form.
func (s *Service) submit(ctx context.Context, identity auth.Identity, conv *Conversation) *Reply {
	form := dispute.Form{
		DigitalChannel:  conv.Form.DigitalChannel,
		ComplaintType:   conv.Form.ComplaintType,
		TransactionID:   conv.Form.TransactionID,
		Description:     conv.Form.Description,
		DebitCardNumber: conv.Form.DebitCardNumber,
		Amount:          conv.Form.Amount,
		VendorName:      conv.Form.VendorName,
	}
	conv.reset()

	d, err := s.registrar.Register(ctx, identity, form)
	if err != nil {
		return &Reply{
			Message:         fmt.Sprintf("Error registering dispute: %s. Please try again or contact customer support.", causeText(err)),
			ValidationError: true,
		}
	}

	return &Reply{
		Message:      promptSubmitted,
		Success:      true,
		TicketNumber: d.TicketNumber,
	}
}

// causeText returns the user-facing cause for a submission failure.
// Known workflow rejections surface their message; anything else is
// logged and replaced with a generic cause.
func causeText(err error) string {
	known := []error{
		dispute.ErrAdminNotFound,
		dispute.ErrTransactionNotFound,
		dispute.ErrAlreadySubmitted,
		dispute.ErrDebitCardNotFound,
		dispute.ErrVendorNotFound,
	}
	for _, sentinel := range known {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	slog.Error("dispute submission failed", "error", err)
	return "an unexpected error occurred"
}

// lockUser serializes turns for a single user id.
func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func invalid(verr *ValidationError) *Reply {
	return &Reply{Message: verr.Message, ValidationError: true}
}

func trimOrEmpty(value string) string {
	trimmed, verr := requireText(value, "Vendor name", 0)
	if verr != nil {
		return ""
	}
	return trimmed
}
