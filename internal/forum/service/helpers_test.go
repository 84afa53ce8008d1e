package service

import (
	"context"
	"testing"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/internal/forum/store/drivers/sqlite"
	"github.com/shelfside/bookforum/pkg/cryptox"
	"github.com/shelfside/bookforum/pkg/idx"
	"github.com/shelfside/bookforum/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestServices(t *testing.T, st store.Store) (*CredentialService, *RegisterService, *LoginService) {
	t.Helper()

	keys, err := jwtx.NewKeys()
	require.NoError(t, err)

	creds := &CredentialService{Issuer: "bookforum-test"}
	register := &RegisterService{Store: st, Credentials: creds}
	login := &LoginService{
		Store:        st,
		Credentials:  creds,
		Keys:         keys,
		Issuer:       "bookforum-test",
		ChallengeTTL: 5 * time.Minute,
		SessionTTL:   time.Hour,
	}
	return creds, register, login
}

// seedAccount inserts an account directly, bypassing registration.
func seedAccount(t *testing.T, st store.Store, username string, role domain.Role, moderator bool) domain.Account {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	account := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, st.Accounts().CreateAccount(ctx, account))
	if moderator {
		require.NoError(t, st.Accounts().SetModerator(ctx, account.ID, true))
		account.Moderator = true
	}
	return account
}

// seedCreatorInvite writes an invite addressed to email and returns the
// invite with its plaintext code.
func seedCreatorInvite(t *testing.T, st store.Store, email string) (domain.CreatorInvite, string) {
	t.Helper()
	ctx := context.Background()

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)

	inv := domain.CreatorInvite{
		ID:          idx.New().String(),
		DomainEmail: email,
		CodeHash:    cryptox.FingerprintToken(code),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, st.CreatorInvites().CreateCreatorInvite(ctx, inv))
	return inv, code
}
