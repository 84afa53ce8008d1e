package sqlite

import (
	"context"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
)

type communitiesRepo struct {
	q queryer
}

func (r *communitiesRepo) CreateCommunity(ctx context.Context, c domain.Community) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO communities (id, name, description, book_title, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.BookTitle, c.OwnerID, c.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *communitiesRepo) GetCommunityByID(ctx context.Context, id string) (domain.Community, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, description, book_title, owner_id, created_at FROM communities WHERE id = ?`, id)

	var c domain.Community
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.BookTitle, &c.OwnerID, &c.CreatedAt); err != nil {
		return domain.Community{}, mapNotFound(err)
	}
	return c, nil
}

func (r *communitiesRepo) ListCommunities(ctx context.Context) ([]domain.Community, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, description, book_title, owner_id, created_at
		 FROM communities ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Community
	for rows.Next() {
		var c domain.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.BookTitle, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
