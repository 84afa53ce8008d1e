package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelfside/bookforum/internal/forum/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

// Ping is a no-op inside a transaction; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Accounts() store.Accounts                   { return &accountsRepo{q: t.tx} }
func (t *txStore) CreatorInvites() store.CreatorInvites       { return &creatorInvitesRepo{q: t.tx} }
func (t *txStore) JournalistInvites() store.JournalistInvites { return &journalistInvitesRepo{q: t.tx} }
func (t *txStore) LoginChallenges() store.LoginChallenges     { return &loginChallengesRepo{q: t.tx} }
func (t *txStore) Posts() store.Posts                         { return &postsRepo{q: t.tx} }
func (t *txStore) Communities() store.Communities             { return &communitiesRepo{q: t.tx} }
func (t *txStore) Topics() store.Topics                       { return &topicsRepo{q: t.tx} }
func (t *txStore) Follows() store.Follows                     { return &followsRepo{q: t.tx} }
