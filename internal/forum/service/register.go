package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/cryptox"
	"github.com/shelfside/bookforum/pkg/idx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

var (
	ErrInvalidRegistration = errors.New("invalid registration request")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteAlreadyUsed   = errors.New("invite has already been used")
	ErrInviteMismatch      = errors.New("invite code or email does not match")
	ErrDomainMismatch      = errors.New("creator username must equal the email domain")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrAccountNotFound     = errors.New("account not found")
)

// RegisterService turns a registration request into an account, consulting
// the invite ledger for the roles that require one. The invite consume and
// the account insert commit or roll back together.
type RegisterService struct {
	Store       store.Store
	Credentials *CredentialService
}

// RegisterParams carries the registration endpoint's input. CreatorInvite
// fields are required for role creator, InviteToken for role journalist;
// readers register without an invite.
type RegisterParams struct {
	Role     domain.Role
	Username string
	Email    string
	Password string

	// Creator invites are addressed to one email and guarded by a code.
	InviteEmail string
	InviteCode  string

	// Journalist links are guarded by possession of the token alone.
	InviteToken string
}

// Register validates the request, redeems the invite where the role needs
// one, and creates the account with its credentials. The returned
// enrollment carries the TOTP secret the caller must show exactly once.
func (s *RegisterService) Register(ctx context.Context, p RegisterParams) (domain.Account, domain.TOTPEnrollment, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if !p.Role.Valid() || p.Username == "" || p.Email == "" || p.Password == "" {
		return domain.Account{}, domain.TOTPEnrollment{}, ErrInvalidRegistration
	}

	// Resolve the invite before touching the accounts table. The lookup is
	// advisory; the conditional consume inside the transaction is what
	// guarantees single use.
	var creatorInvite *domain.CreatorInvite
	var journalistInvite *domain.JournalistInvite

	switch p.Role {
	case domain.RoleCreator:
		inv, err := s.resolveCreatorInvite(ctx, p)
		if err != nil {
			return domain.Account{}, domain.TOTPEnrollment{}, err
		}
		creatorInvite = &inv

	case domain.RoleJournalist:
		inv, err := s.resolveJournalistInvite(ctx, p)
		if err != nil {
			return domain.Account{}, domain.TOTPEnrollment{}, err
		}
		journalistInvite = &inv

	case domain.RoleReader:
		// Open registration.
	}

	// Check availability early for a friendly error; the unique constraint
	// inside the transaction is the real guard.
	if _, err := s.Store.Accounts().GetAccountByUsername(ctx, p.Username); err == nil {
		return domain.Account{}, domain.TOTPEnrollment{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.TOTPEnrollment{}, err
	}

	passwordHash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, domain.TOTPEnrollment{}, err
	}

	enrollment, err := s.Credentials.EnrollTOTP(p.Username)
	if err != nil {
		log.Error("failed to enroll TOTP", slog.Any("error", err))
		return domain.Account{}, domain.TOTPEnrollment{}, err
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		Role:         p.Role,
		PasswordHash: passwordHash,
		TOTPSecret:   enrollment.Secret,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}

		switch {
		case creatorInvite != nil:
			if err := tx.CreatorInvites().ConsumeCreatorInvite(ctx, creatorInvite.ID, account.ID, now); err != nil {
				return mapConsumeErr(err)
			}
		case journalistInvite != nil:
			if err := tx.JournalistInvites().ConsumeJournalistInvite(ctx, journalistInvite.ID, account.ID, now); err != nil {
				return mapConsumeErr(err)
			}
		}

		return nil
	})
	if err != nil {
		return domain.Account{}, domain.TOTPEnrollment{}, err
	}

	log.Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
		slog.String("role", account.Role.String()),
	)

	return account, enrollment, nil
}

// resolveCreatorInvite matches the request against the ledger: the invite
// is addressed to one exact email, the presented code's fingerprint must
// match, and the creator's username must equal the email's domain.
func (s *RegisterService) resolveCreatorInvite(ctx context.Context, p RegisterParams) (domain.CreatorInvite, error) {
	log := slogx.FromContext(ctx)

	if p.InviteEmail == "" || p.InviteCode == "" {
		return domain.CreatorInvite{}, ErrInvalidRegistration
	}

	inv, err := s.Store.CreatorInvites().GetCreatorInviteByEmail(ctx, p.InviteEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("creator registration with unknown invite email")
			return domain.CreatorInvite{}, ErrInviteNotFound
		}
		return domain.CreatorInvite{}, err
	}

	if inv.Used {
		return domain.CreatorInvite{}, ErrInviteAlreadyUsed
	}

	// Exact string comparison on both checks; no normalization.
	if !cryptox.FingerprintEqual(p.InviteCode, inv.CodeHash) || p.Email != inv.DomainEmail {
		log.Warn("creator registration with mismatched invite", slog.String("invite_id", inv.ID))
		return domain.CreatorInvite{}, ErrInviteMismatch
	}

	if p.Username != emailDomain(p.Email) {
		return domain.CreatorInvite{}, ErrDomainMismatch
	}

	return inv, nil
}

func (s *RegisterService) resolveJournalistInvite(ctx context.Context, p RegisterParams) (domain.JournalistInvite, error) {
	log := slogx.FromContext(ctx)

	if p.InviteToken == "" {
		return domain.JournalistInvite{}, ErrInvalidRegistration
	}

	inv, err := s.Store.JournalistInvites().GetJournalistInviteByTokenHash(ctx, cryptox.FingerprintToken(p.InviteToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("journalist registration with unknown invite token")
			return domain.JournalistInvite{}, ErrInviteNotFound
		}
		return domain.JournalistInvite{}, err
	}

	if inv.Used {
		return domain.JournalistInvite{}, ErrInviteAlreadyUsed
	}

	return inv, nil
}

// mapConsumeErr translates the store's compare-and-set outcomes. A racer
// that loses the conditional update gets the same answer a late caller
// would, so the race is invisible at the API.
func mapConsumeErr(err error) error {
	switch {
	case errors.Is(err, store.ErrAlreadyUsed):
		return ErrInviteAlreadyUsed
	case errors.Is(err, store.ErrNotFound):
		return ErrInviteNotFound
	default:
		return err
	}
}

// emailDomain returns the part after the last '@', or "" when there is none.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
