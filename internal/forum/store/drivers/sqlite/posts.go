package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
)

type postsRepo struct {
	q queryer
}

const postColumns = `id, author_id, target_kind, target_id, body_kind, title, body, created_at`

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AuthorID, string(p.TargetKind), p.TargetID, string(p.BodyKind), p.Title, p.Body, p.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *postsRepo) GetPostByID(ctx context.Context, id string) (domain.Post, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

func (r *postsRepo) DeletePost(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *postsRepo) ListPostsByTarget(ctx context.Context, kind domain.TargetKind, targetID string) ([]domain.Post, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE target_kind = ? AND target_id = ?
		 ORDER BY created_at DESC, id DESC`,
		string(kind), targetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *postsRepo) ListProfilePostsByOwners(ctx context.Context, ownerIDs []string) ([]domain.Post, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(ownerIDs)-1) + "?"
	args := make([]any, 0, len(ownerIDs)+1)
	args = append(args, string(domain.TargetProfile))
	for _, id := range ownerIDs {
		args = append(args, id)
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE target_kind = ? AND target_id IN (`+placeholders+`)
		 ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	var targetKind, bodyKind string
	err := row.Scan(&p.ID, &p.AuthorID, &targetKind, &p.TargetID, &bodyKind, &p.Title, &p.Body, &p.CreatedAt)
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	p.TargetKind = domain.TargetKind(targetKind)
	p.BodyKind = domain.BodyKind(bodyKind)
	return p, nil
}

func collectPosts(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.Post, error) {
	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
