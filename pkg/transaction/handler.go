package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

// Handler exposes the transaction HTTP API.
type Handler struct {
	service *Service
}

// NewHandler creates the transaction handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts transaction routes on the mux behind auth middleware.
func (h *Handler) Register(mux *http.ServeMux, authMiddle func(http.Handler) http.Handler) {
	mux.Handle("POST /api/transactions", authMiddle(http.HandlerFunc(h.make)))
	mux.Handle("GET /api/transactions", authMiddle(http.HandlerFunc(h.list)))
}

type makeRequest struct {
	TransactionID   int64   `json:"transactionId"`
	SenderAccNo     int64   `json:"senderAccNo"`
	ReceiverAccNo   int64   `json:"receiverAccNo"`
	Amount          float64 `json:"amount"`
	DebitCardNumber int64   `json:"debitCardNumber"`
	DigitalChannel  string  `json:"digitalChannel"`
	Status          string  `json:"status"`
}

func (h *Handler) make(w http.ResponseWriter, r *http.Request) {
	var req makeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.service.Make(r.Context(), MakeInput(req))
	if err != nil {
		switch {
		case errors.Is(err, ErrSenderNotFound):
			writeError(w, http.StatusNotFound, "Sender account not found")
		case errors.Is(err, ErrReceiverNotFound):
			writeError(w, http.StatusNotFound, "Receiver account not found")
		case errors.Is(err, ErrInvalidDebitCard):
			writeError(w, http.StatusBadRequest, "Invalid Debit Card Number")
		default:
			slog.Error("transaction failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not record transaction")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction initiated successfully!",
		"transaction": t,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	txns, err := h.service.ListForUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("listing transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
