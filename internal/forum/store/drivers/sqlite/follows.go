package sqlite

import (
	"context"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
)

type followsRepo struct {
	q queryer
}

func (r *followsRepo) CreateFollow(ctx context.Context, f domain.Follow) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`,
		f.FollowerID, f.FolloweeID, f.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *followsRepo) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *followsRepo) ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY created_at DESC`,
		followerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
