package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedAccountRow(t *testing.T, st *Store, username string) domain.Account {
	t.Helper()

	account := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		Role:         domain.RoleReader,
		PasswordHash: "hash",
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), account))
	return account
}

func TestAccountsUniqueUsername(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seedAccountRow(t, st, "alice")

	err := st.Accounts().CreateAccount(ctx, domain.Account{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "elsewhere@example.com",
		Role:         domain.RoleReader,
		PasswordHash: "hash",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestConsumeCreatorInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now().UTC()

	account := seedAccountRow(t, st, "winner")

	inv := domain.CreatorInvite{
		ID:          idx.New().String(),
		DomainEmail: "books@riverpress.com",
		CodeHash:    "fingerprint",
	}
	require.NoError(t, st.CreatorInvites().CreateCreatorInvite(ctx, inv))

	t.Run("first consume wins", func(t *testing.T) {
		require.NoError(t, st.CreatorInvites().ConsumeCreatorInvite(ctx, inv.ID, account.ID, now))

		stored, err := st.CreatorInvites().GetCreatorInviteByEmail(ctx, inv.DomainEmail)
		require.NoError(t, err)
		require.True(t, stored.Used)
		require.Equal(t, account.ID, *stored.UsedBy)
	})

	t.Run("second consume is already used", func(t *testing.T) {
		err := st.CreatorInvites().ConsumeCreatorInvite(ctx, inv.ID, account.ID, now)
		require.ErrorIs(t, err, store.ErrAlreadyUsed)
	})

	t.Run("missing invite is not found", func(t *testing.T) {
		err := st.CreatorInvites().ConsumeCreatorInvite(ctx, "no-such-invite", account.ID, now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

// TestConsumeCreatorInviteConcurrent hammers the conditional update from
// many goroutines. RowsAffected can be 1 for exactly one of them.
func TestConsumeCreatorInviteConcurrent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now().UTC()

	account := seedAccountRow(t, st, "winner")

	inv := domain.CreatorInvite{
		ID:          idx.New().String(),
		DomainEmail: "books@riverpress.com",
		CodeHash:    "fingerprint",
	}
	require.NoError(t, st.CreatorInvites().CreateCreatorInvite(ctx, inv))

	const racers = 16
	errs := make([]error, racers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(racers)
	for i := range racers {
		go func() {
			defer done.Done()
			start.Wait()
			errs[i] = st.CreatorInvites().ConsumeCreatorInvite(ctx, inv.ID, account.ID, now)
		}()
	}
	start.Done()
	done.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case err == store.ErrAlreadyUsed:
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, racers-1, losses)
}

func TestConsumeJournalistInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now().UTC()

	minter := seedAccountRow(t, st, "mod")
	redeemer := seedAccountRow(t, st, "scoop")

	inv := domain.JournalistInvite{
		ID:        idx.New().String(),
		TokenHash: "fingerprint",
		CreatedBy: minter.ID,
	}
	require.NoError(t, st.JournalistInvites().CreateJournalistInvite(ctx, inv))

	require.NoError(t, st.JournalistInvites().ConsumeJournalistInvite(ctx, inv.ID, redeemer.ID, now))
	require.ErrorIs(t, st.JournalistInvites().ConsumeJournalistInvite(ctx, inv.ID, redeemer.ID, now), store.ErrAlreadyUsed)
}

func TestConsumeLoginChallenge(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now().UTC()

	account := seedAccountRow(t, st, "alice")

	newChallenge := func(t *testing.T, expiresAt time.Time) domain.LoginChallenge {
		t.Helper()
		c := domain.LoginChallenge{
			ID:        idx.New().String(),
			AccountID: account.ID,
			ExpiresAt: expiresAt,
		}
		require.NoError(t, st.LoginChallenges().CreateLoginChallenge(ctx, c))
		return c
	}

	t.Run("consume returns and deletes", func(t *testing.T) {
		c := newChallenge(t, now.Add(5*time.Minute))

		got, err := st.LoginChallenges().ConsumeLoginChallenge(ctx, c.ID, now)
		require.NoError(t, err)
		require.Equal(t, account.ID, got.AccountID)

		_, err = st.LoginChallenges().ConsumeLoginChallenge(ctx, c.ID, now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired challenge reads as missing", func(t *testing.T) {
		c := newChallenge(t, now.Add(-time.Minute))

		_, err := st.LoginChallenges().ConsumeLoginChallenge(ctx, c.ID, now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("housekeeping sweeps expired rows", func(t *testing.T) {
		live := newChallenge(t, now.Add(5*time.Minute))
		dead := newChallenge(t, now.Add(-time.Minute))

		require.NoError(t, st.LoginChallenges().DeleteExpiredLoginChallenges(ctx, now))

		_, err := st.LoginChallenges().ConsumeLoginChallenge(ctx, live.ID, now)
		require.NoError(t, err)
		_, err = st.LoginChallenges().ConsumeLoginChallenge(ctx, dead.ID, now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	boom := context.DeadlineExceeded // any sentinel will do
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, domain.Account{
			ID:           idx.New().String(),
			Username:     "ghost",
			Email:        "ghost@example.com",
			Role:         domain.RoleReader,
			PasswordHash: "hash",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Accounts().GetAccountByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListProfilePostsByOwners(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	bob := seedAccountRow(t, st, "bob")
	carol := seedAccountRow(t, st, "carol")
	dave := seedAccountRow(t, st, "dave")

	write := func(t *testing.T, author domain.Account, body string) {
		t.Helper()
		require.NoError(t, st.Posts().CreatePost(ctx, domain.Post{
			ID:         idx.New().String(),
			AuthorID:   author.ID,
			TargetKind: domain.TargetProfile,
			TargetID:   author.ID,
			BodyKind:   domain.BodyText,
			Body:       body,
			CreatedAt:  time.Now().UTC(),
		}))
	}

	write(t, bob, "bob 1")
	write(t, carol, "carol 1")
	write(t, dave, "dave 1")
	write(t, bob, "bob 2")

	posts, err := st.Posts().ListProfilePostsByOwners(ctx, []string{bob.ID, carol.ID})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Equal(t, "bob 2", posts[0].Body)

	for _, p := range posts {
		require.NotEqual(t, dave.ID, p.AuthorID)
	}
}
