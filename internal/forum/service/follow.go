package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/slogx"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)

// FollowService manages the follow graph and the profile-post feed built
// from it.
type FollowService struct {
	Store store.Store
}

// Follow makes the actor follow the target account.
func (s *FollowService) Follow(ctx context.Context, actor domain.Account, followeeID string) error {
	log := slogx.FromContext(ctx)

	if followeeID == actor.ID {
		return ErrSelfFollow
	}
	if _, err := s.Store.Accounts().GetAccountByID(ctx, followeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	err := s.Store.Follows().CreateFollow(ctx, domain.Follow{
		FollowerID: actor.ID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyFollowing
		}
		return err
	}

	log.Info("follow created",
		slog.String("follower_id", actor.ID),
		slog.String("followee_id", followeeID),
	)
	return nil
}

// Unfollow removes the follow edge.
func (s *FollowService) Unfollow(ctx context.Context, actor domain.Account, followeeID string) error {
	err := s.Store.Follows().DeleteFollow(ctx, actor.ID, followeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFollowing
		}
		return err
	}
	return nil
}

// Feed returns the profile posts of everyone the actor follows, newest
// first. An empty follow list yields an empty feed.
func (s *FollowService) Feed(ctx context.Context, actor domain.Account) ([]domain.Post, error) {
	followees, err := s.Store.Follows().ListFolloweeIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(followees) == 0 {
		return nil, nil
	}
	return s.Store.Posts().ListProfilePostsByOwners(ctx, followees)
}
