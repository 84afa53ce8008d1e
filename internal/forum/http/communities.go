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

type CommunitiesHandler struct {
	CommunityService *service.CommunityService
}

type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BookTitle   string `json:"book_title"`
}

type CommunityResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BookTitle   string `json:"book_title"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   int64  `json:"created_at"`
}

func communityResponse(c domain.Community) CommunityResponse {
	return CommunityResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		BookTitle:   c.BookTitle,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt.Unix(),
	}
}

func (h *CommunitiesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := actorFromCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	community, err := h.CommunityService.CreateCommunity(ctx, actor, service.CreateCommunityParams{
		Name:        req.Name,
		Description: req.Description,
		BookTitle:   req.BookTitle,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only creators may found communities")
		case errors.Is(err, service.ErrInvalidCommunity):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name and book_title are required")
		default:
			log.Error("failed to create community", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create community")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, communityResponse(community))
}

type CommunityListResponse struct {
	Communities []CommunityResponse `json:"communities"`
}

func (h *CommunitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	communities, err := h.CommunityService.ListCommunities(ctx)
	if err != nil {
		log.Error("failed to list communities", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list communities")
		return
	}

	resp := CommunityListResponse{Communities: make([]CommunityResponse, 0, len(communities))}
	for _, c := range communities {
		resp.Communities = append(resp.Communities, communityResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type TopicResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type TopicListResponse struct {
	Topics []TopicResponse `json:"topics"`
}

func (h *CommunitiesHandler) HandleListTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	topics, err := h.CommunityService.ListTopics(ctx)
	if err != nil {
		log.Error("failed to list topics", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list topics")
		return
	}

	resp := TopicListResponse{Topics: make([]TopicResponse, 0, len(topics))}
	for _, t := range topics {
		resp.Topics = append(resp.Topics, TopicResponse{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
