package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/pkg/httpx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

type RegisterHandler struct {
	RegisterService *service.RegisterService
}

type RegisterRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	// Creator registrations present the invite's addressed email plus the
	// opaque code; journalists present the link token.
	InviteEmail string `json:"invite_email,omitempty"`
	InviteCode  string `json:"invite_code,omitempty"`
	InviteToken string `json:"invite_token,omitempty"`
}

type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`

	// TOTP enrollment material, shown exactly once.
	TOTPSecret string `json:"totp_secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	account, enrollment, err := h.RegisterService.Register(ctx, service.RegisterParams{
		Role:        domain.Role(req.Role),
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		InviteEmail: req.InviteEmail,
		InviteCode:  req.InviteCode,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing or invalid registration fields")
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "invite_not_found", "No invite matches the request")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			httpx.WriteError(w, http.StatusConflict, "invite_already_used", "The invite has already been redeemed")
		case errors.Is(err, service.ErrInviteMismatch):
			httpx.WriteError(w, http.StatusForbidden, "invite_mismatch", "Invite code or email does not match")
		case errors.Is(err, service.ErrDomainMismatch):
			httpx.WriteError(w, http.StatusBadRequest, "domain_mismatch", "Creator username must equal the email domain")
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "username_taken", "Username is already taken")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register account")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{
		AccountID:  account.ID,
		Username:   account.Username,
		Role:       account.Role.String(),
		TOTPSecret: enrollment.Secret,
		OTPAuthURL: enrollment.OTPAuthURL,
	})
}
