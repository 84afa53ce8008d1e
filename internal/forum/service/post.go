package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/policy"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/idx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

var (
	// ErrForbidden means the capability matrix, an ownership rule, or the
	// deletion rule denies the operation. It is distinct from
	// ErrNotAuthorized, which is reserved for the journalist-invite mint.
	ErrForbidden = errors.New("forbidden")

	ErrTargetNotFound = errors.New("target not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrInvalidPost    = errors.New("invalid post")
)

// PostService enforces the posting capability matrix and the moderation
// gate. Every write consults the policy package before touching the store.
type PostService struct {
	Store store.Store
}

// CreatePostParams is the posting endpoint's input.
type CreatePostParams struct {
	TargetKind domain.TargetKind
	TargetID   string
	BodyKind   domain.BodyKind
	Title      string
	Body       string
}

// CreatePost checks the actor's capability for the (target, body) pair,
// verifies the target exists, applies ownership rules, and writes the
// post. Policy denials are ErrForbidden; missing targets are
// ErrTargetNotFound.
func (s *PostService) CreatePost(ctx context.Context, actor domain.Account, p CreatePostParams) (domain.Post, error) {
	log := slogx.FromContext(ctx)

	if !p.TargetKind.Valid() || !p.BodyKind.Valid() || p.TargetID == "" || p.Body == "" {
		return domain.Post{}, ErrInvalidPost
	}

	if !policy.CanPost(actor.Role, p.TargetKind, p.BodyKind) {
		log.Warn("post denied by capability matrix",
			slog.String("account_id", actor.ID),
			slog.String("role", actor.Role.String()),
			slog.String("target_kind", string(p.TargetKind)),
			slog.String("body_kind", string(p.BodyKind)),
		)
		return domain.Post{}, ErrForbidden
	}

	if err := s.checkTarget(ctx, actor, p.TargetKind, p.TargetID); err != nil {
		return domain.Post{}, err
	}

	post := domain.Post{
		ID:         idx.New().String(),
		AuthorID:   actor.ID,
		TargetKind: p.TargetKind,
		TargetID:   p.TargetID,
		BodyKind:   p.BodyKind,
		Title:      p.Title,
		Body:       p.Body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Store.Posts().CreatePost(ctx, post); err != nil {
		return domain.Post{}, err
	}

	log.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("account_id", actor.ID),
		slog.String("target_kind", string(post.TargetKind)),
	)
	return post, nil
}

// checkTarget verifies the target exists and that ownership rules hold.
// Creators write only to their own communities and their own profile;
// journalists write to any topic or community.
func (s *PostService) checkTarget(ctx context.Context, actor domain.Account, kind domain.TargetKind, targetID string) error {
	switch kind {
	case domain.TargetTopic:
		if _, err := s.Store.Topics().GetTopicByID(ctx, targetID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
		return nil

	case domain.TargetCommunity:
		community, err := s.Store.Communities().GetCommunityByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
		if policy.RequiresOwnership(actor.Role, kind) && community.OwnerID != actor.ID {
			return ErrForbidden
		}
		return nil

	case domain.TargetProfile:
		if _, err := s.Store.Accounts().GetAccountByID(ctx, targetID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
		if policy.RequiresOwnership(actor.Role, kind) && targetID != actor.ID {
			return ErrForbidden
		}
		return nil
	}

	return ErrTargetNotFound
}

// DeletePost removes a post. Only the moderator flag grants deletion;
// authorship, role, and ownership never do.
func (s *PostService) DeletePost(ctx context.Context, actor domain.Account, postID string) error {
	log := slogx.FromContext(ctx)

	post, err := s.Store.Posts().GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if !policy.CanDelete(actor, post) {
		log.Warn("post delete denied", slog.String("account_id", actor.ID), slog.String("post_id", postID))
		return ErrForbidden
	}

	if err := s.Store.Posts().DeletePost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	log.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("deleted_by", actor.ID),
	)
	return nil
}

// ListPosts returns the posts on one target, newest first.
func (s *PostService) ListPosts(ctx context.Context, kind domain.TargetKind, targetID string) ([]domain.Post, error) {
	if !kind.Valid() {
		return nil, ErrInvalidPost
	}
	return s.Store.Posts().ListPostsByTarget(ctx, kind, targetID)
}
