package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillianbank/dispute-platform/pkg/health"
	"github.com/brillianbank/dispute-platform/pkg/platform"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := &Server{
		cfg: &platform.Config{
			Server: platform.ServerConfig{Address: ":0"},
			Auth:   platform.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
			Chatbot: platform.ChatbotConfig{
				SessionTTL:      time.Minute,
				CleanupInterval: time.Minute,
			},
			Dispute: platform.DisputeConfig{RefundDelay: time.Hour},
		},
		checker: health.NewChecker(),
		db:      db,
	}
	return s
}

func buildTestHandler(t *testing.T, s *Server) http.Handler {
	t.Helper()
	handler := s.buildHandler()
	t.Cleanup(func() { _ = s.bot.Close() })
	return handler
}

func TestHandlerRoutes(t *testing.T) {
	s := testServer(t)
	handler := buildTestHandler(t, s)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"liveness always ok", http.MethodGet, "/healthz", http.StatusOK},
		{"readiness before ready", http.MethodGet, "/readyz", http.StatusServiceUnavailable},
		{"chatbot needs login", http.MethodGet, "/api/chatbot/status", http.StatusUnauthorized},
		{"disputes need login", http.MethodGet, "/api/disputes", http.StatusUnauthorized},
		{"notifications need login", http.MethodGet, "/api/notifications", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestReadinessAfterSetReady(t *testing.T) {
	s := testServer(t)
	handler := buildTestHandler(t, s)
	s.checker.SetReady()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The database probe runs against the mock connection, which answers
	// pings without expectations.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusRecorderCapturesCode(t *testing.T) {
	handler := logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
