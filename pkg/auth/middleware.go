package auth

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

// loginRequired is the body returned to unauthenticated callers.
var loginRequired = map[string]any{
	"message":         "You must be logged in to use this service.",
	"validationError": true,
}

// Middleware returns HTTP middleware that requires a valid Bearer token
// and attaches the caller's identity to the request context.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeUnauthorized(w)
				return
			}

			id, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles returns middleware that rejects callers whose role is not
// in the allowed set. It must run after Middleware.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				writeUnauthorized(w)
				return
			}
			if !slices.Contains(roles, id.Role) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"message": "Access denied. Insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(loginRequired)
}
