package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brillianbank/dispute-platform/pkg/auth"
)

// Handler exposes the notification HTTP API.
type Handler struct {
	store Store
}

// NewHandler creates the notification handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register mounts notification routes on the mux behind auth middleware.
func (h *Handler) Register(mux *http.ServeMux, authMiddle func(http.Handler) http.Handler) {
	mux.Handle("GET /api/notifications", authMiddle(http.HandlerFunc(h.list)))
	mux.Handle("PUT /api/notifications/{id}/read", authMiddle(http.HandlerFunc(h.markRead)))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	notifications, err := h.store.ListByEmail(r.Context(), id.Email)
	if err != nil {
		slog.Error("listing notifications failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list notifications")
		return
	}
	if notifications == nil {
		notifications = []*Notification{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		slog.Error("marking notification read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not update notification")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
