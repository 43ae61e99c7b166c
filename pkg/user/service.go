package user

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/mail"
)

// resetCodeTTL bounds how long an emailed reset code stays valid.
const resetCodeTTL = 10 * time.Minute

// Service implements account workflows on top of a Store.
type Service struct {
	store  Store
	tokens *auth.Tokens
	mailer mail.Mailer

	mu         sync.Mutex
	resetCodes map[string]resetCode
}

type resetCode struct {
	code      int
	expiresAt time.Time
}

// NewService creates a user service.
func NewService(store Store, tokens *auth.Tokens, mailer mail.Mailer) *Service {
	return &Service{
		store:      store,
		tokens:     tokens,
		mailer:     mailer,
		resetCodes: make(map[string]resetCode),
	}
}

// RegisterInput carries the signup form.
type RegisterInput struct {
	UserName        string
	AccNo           int64
	AdminID         int
	CUID            int64
	Email           string
	BranchCode      string
	BranchName      string
	Password        string
	DebitCardNumber int64
	CardType        string
	Role            string
	VendorName      string
}

// Register creates an account. Duplicate emails and duplicate vendor
// names are rejected before the insert.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrAlreadyExists
	}

	if in.VendorName != "" {
		if _, err := s.store.FindVendor(ctx, in.VendorName); err == nil {
			return nil, ErrVendorNameExists
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = auth.RoleUser
	}

	u := &User{
		ID:              uuid.NewString(),
		UserName:        in.UserName,
		AccNo:           in.AccNo,
		AdminID:         in.AdminID,
		CUID:            in.CUID,
		Email:           in.Email,
		BranchCode:      in.BranchCode,
		BranchName:      in.BranchName,
		PasswordHash:    hash,
		DebitCardNumber: in.DebitCardNumber,
		CardType:        in.CardType,
		Role:            role,
		VendorName:      in.VendorName,
	}

	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{
		UserID:  u.ID,
		Email:   u.Email,
		Role:    u.Role,
		AdminID: u.AdminID,
	})
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// ProfileUpdate carries the fields an account holder may change. Empty
// fields keep their current value.
type ProfileUpdate struct {
	UserName   string
	BranchCode string
	BranchName string
}

// UpdateProfile applies the update to the caller's account and returns
// the updated user.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.UserName != "" {
		u.UserName = in.UserName
	}
	if in.BranchCode != "" {
		u.BranchCode = in.BranchCode
	}
	if in.BranchName != "" {
		u.BranchName = in.BranchName
	}

	if err := s.store.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("profile updated", "user_id", u.ID)
	return u, nil
}

// RequestPasswordReset emails a one-time code to the account holder.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return fmt.Errorf("generating reset code: %w", err)
	}
	code := int(n.Int64()) + 1000

	s.mu.Lock()
	s.resetCodes[email] = resetCode{code: code, expiresAt: time.Now().Add(resetCodeTTL)}
	s.mu.Unlock()

	err = s.mailer.Send(ctx, mail.Message{
		To:           u.Email,
		Subject:      "Password Reset OTP",
		CustomerName: u.UserName,
		Status:       "Password Reset",
		Content:      fmt.Sprintf("Your OTP is %d. It expires in %d minutes.", code, int(resetCodeTTL.Minutes())),
	})
	if err != nil {
		return fmt.Errorf("sending reset code: %w", err)
	}
	return nil
}

// VerifyPasswordReset checks the emailed code and sets the new password.
func (s *Service) VerifyPasswordReset(ctx context.Context, email string, code int, newPassword string) error {
	s.mu.Lock()
	rc, ok := s.resetCodes[email]
	s.mu.Unlock()

	if !ok || rc.code != code || time.Now().After(rc.expiresAt) {
		return fmt.Errorf("invalid OTP")
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.resetCodes, email)
	s.mu.Unlock()

	slog.Info("password reset", "user_id", u.ID)
	return nil
}
