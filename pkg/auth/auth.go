// Package auth provides password hashing, JWT token issuance and
// verification, and HTTP middleware for authenticated routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles recognized by the platform.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

// ErrInvalidToken is returned when a token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID  string
	Email   string
	Role    string
	AdminID int
}

// Claims are the JWT claims issued at login.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	AdminID int    `json:"admin_id,omitempty"`
	jwt.RegisteredClaims
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Tokens issues and verifies platform JWTs.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer with the given signing secret and lifetime.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity.
func (t *Tokens) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  id.UserID,
		Email:   id.Email,
		Role:    id.Role,
		AdminID: id.AdminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Subject:   id.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded identity.
func (t *Tokens) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		AdminID: claims.AdminID,
	}, nil
}

type contextKey string

const identityKey contextKey = "auth.identity"

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated identity from a context.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
