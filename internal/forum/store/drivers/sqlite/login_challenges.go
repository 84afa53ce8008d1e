package sqlite

import (
	"context"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
)

type loginChallengesRepo struct {
	q queryer
}

func (r *loginChallengesRepo) CreateLoginChallenge(ctx context.Context, c domain.LoginChallenge) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO login_challenges (id, account_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.AccountID, c.ExpiresAt, c.CreatedAt,
	)
	return mapConstraint(err)
}

// ConsumeLoginChallenge deletes and returns the challenge in one statement,
// so a replayed token always sees ErrNotFound. An expired row is deleted
// too but reported as ErrNotFound.
func (r *loginChallengesRepo) ConsumeLoginChallenge(ctx context.Context, id string, now time.Time) (domain.LoginChallenge, error) {
	row := r.q.QueryRowContext(ctx,
		`DELETE FROM login_challenges WHERE id = ? RETURNING id, account_id, expires_at, created_at`, id)

	var c domain.LoginChallenge
	if err := row.Scan(&c.ID, &c.AccountID, &c.ExpiresAt, &c.CreatedAt); err != nil {
		return domain.LoginChallenge{}, mapNotFound(err)
	}
	if now.After(c.ExpiresAt) {
		return domain.LoginChallenge{}, store.ErrNotFound
	}
	return c, nil
}

func (r *loginChallengesRepo) DeleteExpiredLoginChallenges(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM login_challenges WHERE expires_at <= ?`, now)
	return err
}
