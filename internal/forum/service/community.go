package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/idx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

var ErrInvalidCommunity = errors.New("invalid community")

// CommunityService manages creator-owned book communities.
type CommunityService struct {
	Store store.Store
}

type CreateCommunityParams struct {
	Name        string
	Description string
	BookTitle   string
}

// CreateCommunity creates a community owned by the actor. Only creators
// found communities; everyone can read them.
func (s *CommunityService) CreateCommunity(ctx context.Context, actor domain.Account, p CreateCommunityParams) (domain.Community, error) {
	log := slogx.FromContext(ctx)

	if actor.Role != domain.RoleCreator {
		return domain.Community{}, ErrForbidden
	}
	if p.Name == "" || p.BookTitle == "" {
		return domain.Community{}, ErrInvalidCommunity
	}

	community := domain.Community{
		ID:          idx.New().String(),
		Name:        p.Name,
		Description: p.Description,
		BookTitle:   p.BookTitle,
		OwnerID:     actor.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Communities().CreateCommunity(ctx, community); err != nil {
		return domain.Community{}, err
	}

	log.Info("community created",
		slog.String("community_id", community.ID),
		slog.String("owner_id", actor.ID),
	)
	return community, nil
}

// GetCommunity loads one community.
func (s *CommunityService) GetCommunity(ctx context.Context, id string) (domain.Community, error) {
	community, err := s.Store.Communities().GetCommunityByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Community{}, ErrTargetNotFound
		}
		return domain.Community{}, err
	}
	return community, nil
}

// ListCommunities returns all communities, newest first.
func (s *CommunityService) ListCommunities(ctx context.Context) ([]domain.Community, error) {
	return s.Store.Communities().ListCommunities(ctx)
}

// ListTopics returns the site-wide topics.
func (s *CommunityService) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	return s.Store.Topics().ListTopics(ctx)
}
