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

type PostsHandler struct {
	PostService *service.PostService
}

type CreatePostRequest struct {
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	BodyKind   string `json:"body_kind"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body"`
}

type PostResponse struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	BodyKind   string `json:"body_kind"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
}

func postResponse(p domain.Post) PostResponse {
	return PostResponse{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		TargetKind: string(p.TargetKind),
		TargetID:   p.TargetID,
		BodyKind:   string(p.BodyKind),
		Title:      p.Title,
		Body:       p.Body,
		CreatedAt:  p.CreatedAt.Unix(),
	}
}

func (h *PostsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	post, err := h.PostService.CreatePost(ctx, actor, service.CreatePostParams{
		TargetKind: domain.TargetKind(req.TargetKind),
		TargetID:   req.TargetID,
		BodyKind:   domain.BodyKind(req.BodyKind),
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPost):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing or invalid post fields")
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Role may not post this content here")
		case errors.Is(err, service.ErrTargetNotFound):
			httpx.WriteError(w, http.StatusNotFound, "target_not_found", "Post target does not exist")
		default:
			log.Error("failed to create post", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create post")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, postResponse(post))
}

func (h *PostsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	err := h.PostService.DeletePost(ctx, actor, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Moderator flag required")
		case errors.Is(err, service.ErrPostNotFound):
			httpx.WriteError(w, http.StatusNotFound, "post_not_found", "Post does not exist")
		default:
			log.Error("failed to delete post", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete post")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
}

// HandleListForKind returns the list handler for one target kind; the
// target id comes from the path.
func (h *PostsHandler) HandleListForKind(kind domain.TargetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		posts, err := h.PostService.ListPosts(ctx, kind, r.PathValue("id"))
		if err != nil {
			log.Error("failed to list posts", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list posts")
			return
		}

		resp := PostListResponse{Posts: make([]PostResponse, 0, len(posts))}
		for _, p := range posts {
			resp.Posts = append(resp.Posts, postResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
