package sqlite

import (
	"context"

	"github.com/shelfside/bookforum/internal/forum/domain"
)

type topicsRepo struct {
	q queryer
}

func (r *topicsRepo) GetTopicByID(ctx context.Context, id string) (domain.Topic, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, description FROM topics WHERE id = ?`, id)

	var t domain.Topic
	if err := row.Scan(&t.ID, &t.Name, &t.Description); err != nil {
		return domain.Topic{}, mapNotFound(err)
	}
	return t, nil
}

func (r *topicsRepo) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, description FROM topics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
