package chatbot

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/brillianbank/dispute-platform/pkg/auth"
)

// Handler exposes the chatbot HTTP API.
type Handler struct {
	service *Service
}

// NewHandler creates the chatbot handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts chatbot routes. Every route requires a logged-in user;
// unauthenticated calls never reach the dialogue engine.
func (h *Handler) Register(mux *http.ServeMux, tokens *auth.Tokens) {
	requireLogin := middleware(tokens)
	mux.Handle("POST /api/chatbot/message", requireLogin(http.HandlerFunc(h.message)))
	mux.Handle("PUT /api/chatbot/reset", requireLogin(http.HandlerFunc(h.reset)))
	mux.Handle("GET /api/chatbot/status", requireLogin(http.HandlerFunc(h.status)))
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message":         "invalid request body",
			"validationError": true,
		})
		return
	}

	reply, err := h.service.ProcessMessage(r.Context(), *identity, req.Message)
	if err != nil {
		slog.Error("processing chatbot message failed", "user_id", identity.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message":         "Sorry, I'm having trouble processing your message right now. Please try again later.",
			"validationError": true,
		})
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	reply, err := h.service.ResetConversation(r.Context(), *identity)
	if err != nil {
		slog.Error("resetting conversation failed", "user_id", identity.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message":         "Error resetting conversation. Please try again.",
			"validationError": true,
		})
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	active, err := h.service.HasActiveConversation(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("loading conversation status failed", "user_id", identity.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"hasActiveConversation": false,
			"messages":              []Turn{},
		})
		return
	}

	messages := []Turn{}
	if active {
		messages, err = h.service.Messages(r.Context(), identity.UserID)
		if err != nil {
			slog.Error("loading conversation messages failed", "user_id", identity.UserID, "error", err)
			messages = []Turn{}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hasActiveConversation": active,
		"messages":              messages,
	})
}

// middleware requires a valid Bearer token and attaches the identity. The
// rejection message is chatbot-specific.
func middleware(tokens *auth.Tokens) func(http.Handler) http.Handler {
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

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"message":         "You must be logged in to use the chatbot.",
		"validationError": true,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
