package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/store"
)

type creatorInvitesRepo struct {
	q queryer
}

func (r *creatorInvitesRepo) CreateCreatorInvite(ctx context.Context, inv domain.CreatorInvite) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO creator_invites (id, domain_email, code_hash, used, used_by, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.DomainEmail, inv.CodeHash, inv.Used,
		mapOptionalString(inv.UsedBy), mapOptionalTime(inv.UsedAt), inv.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *creatorInvitesRepo) GetCreatorInviteByEmail(ctx context.Context, email string) (domain.CreatorInvite, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, domain_email, code_hash, used, used_by, used_at, created_at
		 FROM creator_invites WHERE domain_email = ?`, email)

	var inv domain.CreatorInvite
	var usedBy sql.NullString
	var usedAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.DomainEmail, &inv.CodeHash, &inv.Used, &usedBy, &usedAt, &inv.CreatedAt); err != nil {
		return domain.CreatorInvite{}, mapNotFound(err)
	}
	inv.UsedBy = mapNullStringPtr(usedBy)
	inv.UsedAt = mapNullTimePtr(usedAt)
	return inv, nil
}

// ConsumeCreatorInvite is the compare-and-set on the used flag: the UPDATE
// only matches while used is still 0, so exactly one concurrent caller can
// ever see RowsAffected == 1.
func (r *creatorInvitesRepo) ConsumeCreatorInvite(ctx context.Context, inviteID, usedBy string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE creator_invites SET used = 1, used_by = ?, used_at = ? WHERE id = ? AND used = 0`,
		usedBy, at, inviteID,
	)
	if err != nil {
		return err
	}
	return consumeOutcome(ctx, r.q, res, `SELECT 1 FROM creator_invites WHERE id = ?`, inviteID)
}

type journalistInvitesRepo struct {
	q queryer
}

func (r *journalistInvitesRepo) CreateJournalistInvite(ctx context.Context, inv domain.JournalistInvite) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO journalist_invites (id, token_hash, created_by, used, used_by, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.CreatedBy, inv.Used,
		mapOptionalString(inv.UsedBy), mapOptionalTime(inv.UsedAt), inv.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *journalistInvitesRepo) GetJournalistInviteByTokenHash(ctx context.Context, hash string) (domain.JournalistInvite, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, token_hash, created_by, used, used_by, used_at, created_at
		 FROM journalist_invites WHERE token_hash = ?`, hash)

	var inv domain.JournalistInvite
	var usedBy sql.NullString
	var usedAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.TokenHash, &inv.CreatedBy, &inv.Used, &usedBy, &usedAt, &inv.CreatedAt); err != nil {
		return domain.JournalistInvite{}, mapNotFound(err)
	}
	inv.UsedBy = mapNullStringPtr(usedBy)
	inv.UsedAt = mapNullTimePtr(usedAt)
	return inv, nil
}

func (r *journalistInvitesRepo) ConsumeJournalistInvite(ctx context.Context, inviteID, usedBy string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE journalist_invites SET used = 1, used_by = ?, used_at = ? WHERE id = ? AND used = 0`,
		usedBy, at, inviteID,
	)
	if err != nil {
		return err
	}
	return consumeOutcome(ctx, r.q, res, `SELECT 1 FROM journalist_invites WHERE id = ?`, inviteID)
}

// consumeOutcome distinguishes the two ways a conditional consume can match
// zero rows: the invite exists but was already used, or it never existed.
func consumeOutcome(ctx context.Context, q queryer, res sql.Result, existsQuery, inviteID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var one int
	if err := q.QueryRowContext(ctx, existsQuery, inviteID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		return err
	}
	return store.ErrAlreadyUsed
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
