package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/cryptox"
	"github.com/shelfside/bookforum/pkg/jwtx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidSecondFactor covers a wrong or stale TOTP code and an
	// unknown, expired, or already-consumed challenge.
	ErrInvalidSecondFactor = errors.New("invalid second factor")
)

// LoginService drives the two-step login: a password check that yields a
// short-lived single-use challenge, then a TOTP check that redeems the
// challenge for a session. The second factor is unreachable until the
// first succeeds.
type LoginService struct {
	Store       store.Store
	Credentials *CredentialService
	Keys        *jwtx.Keys

	Issuer       string
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

// PasswordLogin verifies the password step and mints a login challenge.
// The returned token is opaque and single-use; only its fingerprint is
// persisted. Unknown usernames and wrong passwords return the same error.
func (s *LoginService) PasswordLogin(ctx context.Context, username, password string) (string, time.Time, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash anyway so the unknown-username path costs the
			// same as a wrong password.
			_ = cryptox.VerifyPassword(password, dummyPasswordHash)
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if !s.Credentials.VerifyPassword(account, password) {
		log.Warn("password login failed", slog.String("account_id", account.ID))
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	challenge := domain.LoginChallenge{
		ID:        cryptox.FingerprintToken(token),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.ChallengeTTL),
		CreatedAt: now,
	}
	if err := s.Store.LoginChallenges().CreateLoginChallenge(ctx, challenge); err != nil {
		return "", time.Time{}, err
	}

	log.Info("login challenge issued", slog.String("account_id", account.ID))
	return token, challenge.ExpiresAt, nil
}

// CompleteLogin redeems a challenge with a TOTP code and returns a signed
// session token. The challenge is consumed before the code is checked, so
// a wrong code costs the caller their challenge and the password step must
// be repeated.
func (s *LoginService) CompleteLogin(ctx context.Context, challengeToken, code string, at time.Time) (string, jwtx.SessionClaims, error) {
	log := slogx.FromContext(ctx)

	challenge, err := s.Store.LoginChallenges().ConsumeLoginChallenge(ctx, cryptox.FingerprintToken(challengeToken), at)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", jwtx.SessionClaims{}, ErrInvalidSecondFactor
		}
		return "", jwtx.SessionClaims{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, challenge.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", jwtx.SessionClaims{}, ErrInvalidSecondFactor
		}
		return "", jwtx.SessionClaims{}, err
	}

	if !s.Credentials.VerifyTOTP(account, code, at) {
		log.Warn("second factor rejected", slog.String("account_id", account.ID))
		return "", jwtx.SessionClaims{}, ErrInvalidSecondFactor
	}

	claims := jwtx.NewSessionClaims(account.ID, account.Username, account.Role.String(), account.Moderator, s.Issuer, s.SessionTTL, at)
	signed, err := s.Keys.Sign(claims)
	if err != nil {
		return "", jwtx.SessionClaims{}, err
	}

	log.Info("session issued",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)
	return signed, claims, nil
}

// dummyPasswordHash is a valid argon2id hash of a random throwaway value,
// used to equalize timing on the unknown-username path.
const dummyPasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
