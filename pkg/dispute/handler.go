package dispute

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brillianbank/dispute-platform/pkg/auth"
)

// Handler exposes the dispute HTTP API for customers, admins, and vendors.
type Handler struct {
	service *Service
}

// NewHandler creates the dispute handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts dispute routes on the mux. Customer routes need a valid
// token; admin and vendor routes additionally check the role.
func (h *Handler) Register(mux *http.ServeMux, authMiddle func(http.Handler) http.Handler) {
	adminOnly := auth.RequireRoles(auth.RoleAdmin)
	vendorOnly := auth.RequireRoles(auth.RoleVendor)

	mux.Handle("POST /api/disputes", authMiddle(http.HandlerFunc(h.register)))
	mux.Handle("GET /api/disputes", authMiddle(http.HandlerFunc(h.listMine)))
	mux.Handle("GET /api/disputes/{ticket}", authMiddle(http.HandlerFunc(h.findByTicket)))

	mux.Handle("GET /api/admin/disputes", authMiddle(adminOnly(http.HandlerFunc(h.listAll))))
	mux.Handle("PUT /api/admin/disputes/{id}/status", authMiddle(adminOnly(http.HandlerFunc(h.resolve))))
	mux.Handle("GET /api/admin/reports/fraud", authMiddle(adminOnly(http.HandlerFunc(h.fraudReport))))

	mux.Handle("GET /api/vendor/disputes", authMiddle(vendorOnly(http.HandlerFunc(h.listForVendor))))
	mux.Handle("PUT /api/vendor/disputes/{id}/response", authMiddle(vendorOnly(http.HandlerFunc(h.respond))))
}

type registerRequest struct {
	DigitalChannel  string  `json:"digitalChannel"`
	ComplaintType   string  `json:"complaintType"`
	TransactionID   int64   `json:"transactionId"`
	Description     string  `json:"description"`
	DebitCardNumber int64   `json:"debitCardNumber"`
	VendorName      string  `json:"vendorName"`
	CardType        string  `json:"cardType"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.service.Register(r.Context(), *identity, Form{
		DigitalChannel:  req.DigitalChannel,
		ComplaintType:   req.ComplaintType,
		TransactionID:   req.TransactionID,
		Description:     req.Description,
		DebitCardNumber: req.DebitCardNumber,
		VendorName:      req.VendorName,
		CardType:        req.CardType,
	})
	if err != nil {
		status, msg := errorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("registering dispute failed", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Dispute registered successfully",
		"ticketNumber": d.TicketNumber,
		"dispute":      d,
	})
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	disputes, err := h.service.ListForEmail(r.Context(), identity.Email)
	if err != nil {
		slog.Error("listing disputes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list disputes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"disputes": emptyIfNil(disputes)})
}

func (h *Handler) findByTicket(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	ticket, err := strconv.Atoi(r.PathValue("ticket"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticket number")
		return
	}

	d, err := h.service.FindByTicketNumber(r.Context(), ticket)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		slog.Error("finding dispute failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load dispute")
		return
	}
	if d.Email != identity.Email && identity.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied. Insufficient permissions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"dispute": d})
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.service.ListAll(r.Context())
	if err != nil {
		slog.Error("listing disputes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list disputes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"disputes": emptyIfNil(disputes)})
}

type resolveRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != StatusApproved && req.Status != StatusRejected {
		writeError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	d, err := h.service.Resolve(r.Context(), r.PathValue("id"), req.Status, req.Remarks, identity.AdminID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		slog.Error("resolving dispute failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not update dispute")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Dispute updated", "dispute": d})
}

func (h *Handler) fraudReport(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
		to = t
	}

	report, err := h.service.FraudReport(r.Context(), from, to, identity.Email)
	if err != nil {
		slog.Error("building fraud report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (h *Handler) listForVendor(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	disputes, err := h.service.ListForVendor(r.Context(), identity.Email)
	if err != nil {
		slog.Error("listing vendor disputes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list disputes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"disputes": emptyIfNil(disputes)})
}

type respondRequest struct {
	Response string `json:"response"`
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Response == "" {
		writeError(w, http.StatusBadRequest, "response is required")
		return
	}

	d, err := h.service.Respond(r.Context(), r.PathValue("id"), req.Response)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
		case errors.Is(err, ErrResponseExists):
			writeError(w, http.StatusConflict, ErrResponseExists.Error())
		default:
			slog.Error("recording vendor response failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not record response")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Response recorded", "dispute": d})
}

// errorStatus maps registration failures to HTTP responses. Sentinel causes
// surface their message; anything else stays generic.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrAdminNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrDebitCardNotFound),
		errors.Is(err, ErrVendorNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrAlreadySubmitted):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "could not register dispute"
	}
}

func emptyIfNil(disputes []*Dispute) []*Dispute {
	if disputes == nil {
		return []*Dispute{}
	}
	return disputes
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
