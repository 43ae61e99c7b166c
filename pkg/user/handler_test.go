package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/mail"
)

func newTestHandler(t *testing.T) (*http.ServeMux, *Service, *auth.Tokens) {
	t.Helper()

	tokens := auth.NewTokens("test-secret", time.Hour)
	svc := NewService(NewMemoryStore(), tokens, &mail.Recorder{})

	mux := http.NewServeMux()
	NewHandler(svc).Register(mux, auth.Middleware(tokens))
	return mux, svc, tokens
}

func TestProfileRoundTrip(t *testing.T) {
	mux, svc, tokens := newTestHandler(t)
	u := registerAlice(t, svc)

	token, err := tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/users/me",
		strings.NewReader(`{"userName": "Alice B", "branchName": "Downtown"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Profile updated successfully", resp.Message)
	assert.Equal(t, "Alice B", resp.User["userName"])
	assert.Equal(t, "Downtown", resp.User["branchName"])
	assert.NotContains(t, resp.User, "passwordHash")

	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Alice B", profile["userName"])
	assert.Equal(t, "BR001", profile["branchCode"])
}

func TestUpdateProfileRequiresLogin(t *testing.T) {
	mux, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
