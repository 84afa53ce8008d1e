package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/stretchr/testify/require"
)

// registerReader runs a full registration and returns the account and its
// TOTP secret.
func registerReader(t *testing.T, register *RegisterService, username, password string) (domain.Account, string) {
	t.Helper()

	account, enrollment, err := register.Register(context.Background(), RegisterParams{
		Role:     domain.RoleReader,
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return account, enrollment.Secret
}

func TestPasswordLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, register, login := newTestServices(t, st)

	registerReader(t, register, "alice", "a strong password")

	t.Run("valid password yields a challenge", func(t *testing.T) {
		token, expiresAt, err := login.PasswordLogin(ctx, "alice", "a strong password")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.True(t, expiresAt.After(time.Now()))
	})

	t.Run("wrong password and unknown username are indistinguishable", func(t *testing.T) {
		_, _, errWrong := login.PasswordLogin(ctx, "alice", "wrong password")
		_, _, errUnknown := login.PasswordLogin(ctx, "nobody", "a strong password")

		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.Equal(t, errWrong, errUnknown)
	})
}

func TestCompleteLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, register, login := newTestServices(t, st)

	account, secret := registerReader(t, register, "alice", "a strong password")

	passwordStep := func(t *testing.T) string {
		t.Helper()
		token, _, err := login.PasswordLogin(ctx, "alice", "a strong password")
		require.NoError(t, err)
		return token
	}

	t.Run("correct code issues a session", func(t *testing.T) {
		challenge := passwordStep(t)
		now := time.Now().UTC()

		code, err := totp.GenerateCode(secret, now)
		require.NoError(t, err)

		signed, claims, err := login.CompleteLogin(ctx, challenge, code, now)
		require.NoError(t, err)
		require.NotEmpty(t, signed)
		require.Equal(t, account.ID, claims.Subject)
		require.Equal(t, "alice", claims.Username)
		require.Equal(t, "reader", claims.Role)
		require.False(t, claims.Moderator)

		verified, err := login.Keys.Verify(signed)
		require.NoError(t, err)
		require.Equal(t, account.ID, verified.Subject)
	})

	t.Run("wrong code rejects and burns the challenge", func(t *testing.T) {
		challenge := passwordStep(t)
		now := time.Now().UTC()

		_, _, err := login.CompleteLogin(ctx, challenge, "000000", now)
		require.ErrorIs(t, err, ErrInvalidSecondFactor)

		// The challenge is consumed even on failure; a correct code no
		// longer helps without redoing the password step.
		code, err := totp.GenerateCode(secret, now)
		require.NoError(t, err)
		_, _, err = login.CompleteLogin(ctx, challenge, code, now)
		require.ErrorIs(t, err, ErrInvalidSecondFactor)
	})

	t.Run("challenge is single use on success too", func(t *testing.T) {
		challenge := passwordStep(t)
		now := time.Now().UTC()

		code, err := totp.GenerateCode(secret, now)
		require.NoError(t, err)

		_, _, err = login.CompleteLogin(ctx, challenge, code, now)
		require.NoError(t, err)

		_, _, err = login.CompleteLogin(ctx, challenge, code, now)
		require.ErrorIs(t, err, ErrInvalidSecondFactor)
	})

	t.Run("stale code rejected", func(t *testing.T) {
		challenge := passwordStep(t)
		now := time.Now().UTC()

		// Two minutes is outside the one-step skew window.
		stale, err := totp.GenerateCode(secret, now.Add(-2*time.Minute))
		require.NoError(t, err)

		_, _, err = login.CompleteLogin(ctx, challenge, stale, now)
		require.ErrorIs(t, err, ErrInvalidSecondFactor)
	})

	t.Run("expired challenge rejected", func(t *testing.T) {
		challenge := passwordStep(t)
		future := time.Now().UTC().Add(login.ChallengeTTL + time.Minute)

		code, err := totp.GenerateCode(secret, future)
		require.NoError(t, err)

		_, _, err = login.CompleteLogin(ctx, challenge, code, future)
		require.ErrorIs(t, err, ErrInvalidSecondFactor)
	})

	t.Run("unknown challenge rejected", func(t *testing.T) {
		now := time.Now().UTC()
		code, err := totp.GenerateCode(secret, now)
		require.NoError(t, err)

		_, _, err = login.CompleteLogin(ctx, "never-issued", code, now)
		require.ErrorIs(t, err, ErrInvalidSecondFactor)
	})
}

// TestSecondFactorUnreachableWithoutPassword pins the sequencing rule: no
// amount of valid TOTP knowledge opens a session without a prior password
// success, because sessions only mint against a stored challenge.
func TestSecondFactorUnreachableWithoutPassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, register, login := newTestServices(t, st)

	_, secret := registerReader(t, register, "alice", "a strong password")

	now := time.Now().UTC()
	code, err := totp.GenerateCode(secret, now)
	require.NoError(t, err)

	_, _, err = login.CompleteLogin(ctx, code, code, now)
	require.ErrorIs(t, err, ErrInvalidSecondFactor)
}
