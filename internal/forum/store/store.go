package store

import (
	"context"
	"errors"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrAlreadyUsed is returned by the conditional consume operations when
	// the used flag was no longer false at update time. A concurrent loser
	// and a genuinely late caller are indistinguishable by design.
	ErrAlreadyUsed = errors.New("store: already used")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy and let a transaction
// expose the same surface as the root store.
type Store interface {
	Accounts() Accounts
	CreatorInvites() CreatorInvites
	JournalistInvites() JournalistInvites
	LoginChallenges() LoginChallenges
	Posts() Posts
	Communities() Communities
	Topics() Topics
	Follows() Follows

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Preferred over Tx for multi-step
	// operations that must be atomic (invite consume + account insert).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used during the password step of login.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by the app via
	// ULID). Returns ErrAlreadyExists on a username collision.
	CreateAccount(ctx context.Context, a domain.Account) error

	// SetModerator flips the moderator flag. Only reachable from operator
	// tooling and tests; there is no API surface for it.
	SetModerator(ctx context.Context, accountID string, moderator bool) error
}

type CreatorInvites interface {
	// CreateCreatorInvite writes an operator-issued invite (code_hash is
	// the SHA-256 fingerprint of the opaque code).
	CreateCreatorInvite(ctx context.Context, inv domain.CreatorInvite) error

	// GetCreatorInviteByEmail looks an invite up by its exact domain-email.
	GetCreatorInviteByEmail(ctx context.Context, email string) (domain.CreatorInvite, error)

	// ConsumeCreatorInvite marks the invite used via a conditional update
	// (WHERE used = 0). Returns ErrAlreadyUsed when the flag was already
	// set, ErrNotFound when no such invite exists.
	ConsumeCreatorInvite(ctx context.Context, inviteID, usedBy string, at time.Time) error
}

type JournalistInvites interface {
	CreateJournalistInvite(ctx context.Context, inv domain.JournalistInvite) error

	GetJournalistInviteByTokenHash(ctx context.Context, hash string) (domain.JournalistInvite, error)

	// ConsumeJournalistInvite has the same compare-and-set contract as
	// ConsumeCreatorInvite.
	ConsumeJournalistInvite(ctx context.Context, inviteID, usedBy string, at time.Time) error
}

type LoginChallenges interface {
	CreateLoginChallenge(ctx context.Context, c domain.LoginChallenge) error

	// ConsumeLoginChallenge atomically deletes and returns a non-expired
	// challenge. A second call with the same token returns ErrNotFound,
	// which makes every login attempt single-use.
	ConsumeLoginChallenge(ctx context.Context, id string, now time.Time) (domain.LoginChallenge, error)

	// DeleteExpiredLoginChallenges is housekeeping.
	DeleteExpiredLoginChallenges(ctx context.Context, now time.Time) error
}

type Posts interface {
	CreatePost(ctx context.Context, p domain.Post) error

	GetPostByID(ctx context.Context, id string) (domain.Post, error)

	DeletePost(ctx context.Context, id string) error

	// ListPostsByTarget returns posts for one target, newest first.
	ListPostsByTarget(ctx context.Context, kind domain.TargetKind, targetID string) ([]domain.Post, error)

	// ListProfilePostsByOwners merges profile posts of the given owners,
	// newest first. Used by the follow feed.
	ListProfilePostsByOwners(ctx context.Context, ownerIDs []string) ([]domain.Post, error)
}

type Communities interface {
	CreateCommunity(ctx context.Context, c domain.Community) error

	GetCommunityByID(ctx context.Context, id string) (domain.Community, error)

	ListCommunities(ctx context.Context) ([]domain.Community, error)
}

type Topics interface {
	GetTopicByID(ctx context.Context, id string) (domain.Topic, error)

	ListTopics(ctx context.Context) ([]domain.Topic, error)
}

type Follows interface {
	// CreateFollow inserts a follow pair; ErrAlreadyExists when duplicated.
	CreateFollow(ctx context.Context, f domain.Follow) error

	// DeleteFollow removes a follow pair; ErrNotFound when absent.
	DeleteFollow(ctx context.Context, followerID, followeeID string) error

	// ListFolloweeIDs returns the ids the follower follows.
	ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error)
}
