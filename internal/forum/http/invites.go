package http

import (
	"errors"
	"net/http"

	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/pkg/httpx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

type InviteHandler struct {
	InviteService *service.InviteService
}

type JournalistInviteResponse struct {
	InviteID string `json:"invite_id"`
	// Token is the single-use registration link token, shown only here.
	Token string `json:"token"`
}

func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	inv, token, err := h.InviteService.MintJournalistInvite(ctx, actor)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			httpx.WriteError(w, http.StatusForbidden, "not_authorized", "Moderator flag required")
			return
		}
		log.Error("failed to mint journalist invite", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to mint invite")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, JournalistInviteResponse{
		InviteID: inv.ID,
		Token:    token,
	})
}
