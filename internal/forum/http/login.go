package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/pkg/httpx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

type LoginHandler struct {
	LoginService *service.LoginService
}

type PasswordLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordLoginResponse struct {
	// ChallengeToken is single-use and must be presented, with a TOTP
	// code, to the second step before it expires.
	ChallengeToken string `json:"challenge_token"`
	ExpiresAt      int64  `json:"expires_at"`
}

type TOTPLoginRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

type TOTPLoginResponse struct {
	SessionToken string `json:"session_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    int64  `json:"expires_at"`
}

// HandlePassword runs the first login step. Unknown usernames and wrong
// passwords are indistinguishable in the response.
func (h *LoginHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req PasswordLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	token, expiresAt, err := h.LoginService.PasswordLogin(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
			return
		}
		log.Error("password login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to process login")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, PasswordLoginResponse{
		ChallengeToken: token,
		ExpiresAt:      expiresAt.Unix(),
	})
}

// HandleTOTP runs the second login step and issues the session token.
func (h *LoginHandler) HandleTOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req TOTPLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.ChallengeToken == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "challenge_token and code are required")
		return
	}

	signed, claims, err := h.LoginService.CompleteLogin(ctx, req.ChallengeToken, req.Code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, service.ErrInvalidSecondFactor) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_second_factor", "Invalid or expired second factor")
			return
		}
		log.Error("totp login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to process login")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TOTPLoginResponse{
		SessionToken: signed,
		TokenType:    "Bearer",
		ExpiresAt:    claims.ExpiresAt.Unix(),
	})
}
