package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/cryptox"
	"github.com/shelfside/bookforum/pkg/idx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

// ErrNotAuthorized is returned when the actor lacks the moderator flag for
// a moderator-only operation.
var ErrNotAuthorized = errors.New("not authorized")

// InviteService mints invites. Creator invites are issued out-of-band by
// operators; journalist links are minted in-app by moderators.
type InviteService struct {
	Store store.Store
}

// MintCreatorInvite writes an operator-issued creator invite addressed to
// one exact email. The returned code is shown once and stored only as a
// fingerprint.
func (s *InviteService) MintCreatorInvite(ctx context.Context, domainEmail string) (domain.CreatorInvite, string, error) {
	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.CreatorInvite{}, "", err
	}

	inv := domain.CreatorInvite{
		ID:          idx.New().String(),
		DomainEmail: domainEmail,
		CodeHash:    cryptox.FingerprintToken(code),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.CreatorInvites().CreateCreatorInvite(ctx, inv); err != nil {
		return domain.CreatorInvite{}, "", err
	}
	return inv, code, nil
}

// MintJournalistInvite mints a single-use journalist registration link
// token. Only moderators may mint; the raw token is returned once and the
// store keeps its fingerprint.
func (s *InviteService) MintJournalistInvite(ctx context.Context, actor domain.Account) (domain.JournalistInvite, string, error) {
	log := slogx.FromContext(ctx)

	if !actor.Moderator {
		log.Warn("journalist invite mint denied", slog.String("account_id", actor.ID))
		return domain.JournalistInvite{}, "", ErrNotAuthorized
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.JournalistInvite{}, "", err
	}

	inv := domain.JournalistInvite{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		CreatedBy: actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.JournalistInvites().CreateJournalistInvite(ctx, inv); err != nil {
		return domain.JournalistInvite{}, "", err
	}

	log.Info("journalist invite minted",
		slog.String("invite_id", inv.ID),
		slog.String("minted_by", actor.ID),
	)
	return inv, token, nil
}
