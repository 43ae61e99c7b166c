package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brillianbank/dispute-platform/pkg/auth"
)

// Handler exposes the API key request HTTP API.
type Handler struct {
	service *Service
}

// NewHandler creates the admin handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts API key routes: vendors file requests, admins decide.
func (h *Handler) Register(mux *http.ServeMux, authMiddle func(http.Handler) http.Handler) {
	adminOnly := auth.RequireRoles(auth.RoleAdmin)
	vendorOnly := auth.RequireRoles(auth.RoleVendor)

	mux.Handle("POST /api/vendor/apikey/requests", authMiddle(vendorOnly(http.HandlerFunc(h.request))))

	mux.Handle("GET /api/admin/apikey/requests", authMiddle(adminOnly(http.HandlerFunc(h.list))))
	mux.Handle("PUT /api/admin/apikey/requests/{id}/approve", authMiddle(adminOnly(http.HandlerFunc(h.approve))))
	mux.Handle("PUT /api/admin/apikey/requests/{id}/reject", authMiddle(adminOnly(http.HandlerFunc(h.reject))))
}

type requestKeyRequest struct {
	TransactionID int64 `json:"transactionId"`
}

func (h *Handler) request(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req requestKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == 0 {
		writeError(w, http.StatusBadRequest, "transactionId is required")
		return
	}

	if _, err := h.service.RequestAPIKey(r.Context(), identity.Email, req.TransactionID); err != nil {
		switch {
		case errors.Is(err, ErrVendorNotFound), errors.Is(err, ErrTransactionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRequestPending):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("requesting api key failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not submit request")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "API key request submitted. Awaiting admin approval.",
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListRequests(r.Context())
	if err != nil {
		slog.Error("listing api key requests failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list requests")
		return
	}
	if requests == nil {
		requests = []*APIKeyRequest{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDecisionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "API key approved and generated",
		"apiKey":  key,
	})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reject(r.Context(), r.PathValue("id")); err != nil {
		writeDecisionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "API key request rejected"})
}

func writeDecisionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrVendorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoPendingRequest):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("deciding api key request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not update request")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
