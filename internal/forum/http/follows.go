package http

import (
	"errors"
	"net/http"

	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/pkg/httpx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

type FollowsHandler struct {
	FollowService *service.FollowService
}

func (h *FollowsHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	err := h.FollowService.Follow(ctx, actor, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Cannot follow yourself")
		case errors.Is(err, service.ErrAccountNotFound):
			httpx.WriteError(w, http.StatusNotFound, "account_not_found", "Account does not exist")
		case errors.Is(err, service.ErrAlreadyFollowing):
			httpx.WriteError(w, http.StatusConflict, "already_following", "Already following this account")
		default:
			log.Error("failed to create follow", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to follow")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FollowsHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	err := h.FollowService.Unfollow(ctx, actor, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFollowing) {
			httpx.WriteError(w, http.StatusNotFound, "not_following", "Not following this account")
			return
		}
		log.Error("failed to delete follow", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to unfollow")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FollowsHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	posts, err := h.FollowService.Feed(ctx, actor)
	if err != nil {
		log.Error("failed to build feed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to build feed")
		return
	}

	resp := PostListResponse{Posts: make([]PostResponse, 0, len(posts))}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, postResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
