package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brillianbank/dispute-platform/pkg/auth"
)

// Handler exposes the account HTTP API.
type Handler struct {
	service *Service
}

// NewHandler creates the account handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts account routes on the mux. authMiddle guards the
// authenticated routes.
func (h *Handler) Register(mux *http.ServeMux, authMiddle func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/users/signup", h.signup)
	mux.HandleFunc("POST /api/users/login", h.login)
	mux.HandleFunc("POST /api/users/reset/request", h.resetRequest)
	mux.HandleFunc("POST /api/users/reset/verify", h.resetVerify)
	mux.Handle("GET /api/users/me", authMiddle(http.HandlerFunc(h.me)))
	mux.Handle("PUT /api/users/me", authMiddle(http.HandlerFunc(h.updateMe)))
}

type signupRequest struct {
	UserName        string `json:"userName"`
	AccNo           int64  `json:"accNo"`
	AdminID         int    `json:"adminId"`
	CUID            int64  `json:"cuid"`
	Email           string `json:"email"`
	BranchCode      string `json:"branchCode"`
	BranchName      string `json:"branchName"`
	Password        string `json:"password"`
	DebitCardNumber int64  `json:"debitCardNumber"`
	CardType        string `json:"cardType"`
	Role            string `json:"role"`
	VendorName      string `json:"vendorName"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			writeError(w, http.StatusConflict, "User already exists")
		case errors.Is(err, ErrVendorNameExists):
			writeError(w, http.StatusConflict, "Vendor Name already exists")
		default:
			slog.Error("signup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not create account")
		}
		return
	}

	writeJSON(w, http.StatusCreated, publicUser(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid Credentials")
			return
		}
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "success",
		"token":   token,
		"user":    publicUser(u),
	})
}

func (h *Handler) resetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("reset request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not send OTP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
}

func (h *Handler) resetVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         int    `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.VerifyPasswordReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid OTP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	u, err := h.service.Get(r.Context(), id.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, publicUser(u))
}

type updateProfileRequest struct {
	UserName   string `json:"userName"`
	BranchCode string `json:"branchCode"`
	BranchName string `json:"branchName"`
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), id.UserID, ProfileUpdate(req))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("profile update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating user profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    publicUser(u),
	})
}

// publicUser strips the password hash from API responses.
func publicUser(u *User) map[string]any {
	return map[string]any{
		"id":              u.ID,
		"userName":        u.UserName,
		"accNo":           u.AccNo,
		"cuid":            u.CUID,
		"email":           u.Email,
		"branchCode":      u.BranchCode,
		"branchName":      u.BranchName,
		"debitCardNumber": u.DebitCardNumber,
		"cardType":        u.CardType,
		"role":            u.Role,
		"vendorName":      u.VendorName,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
