package sqlite

import (
	"context"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
)

type accountsRepo struct {
	q queryer
}

const accountColumns = `id, username, email, role, password_hash, totp_secret, moderator, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, role, password_hash, totp_secret, moderator, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, string(a.Role), a.PasswordHash, a.TOTPSecret, a.Moderator, a.CreatedAt, a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) SetModerator(ctx context.Context, accountID string, moderator bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET moderator = ?, updated_at = ? WHERE id = ?`,
		moderator, time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var role string
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &role, &a.PasswordHash, &a.TOTPSecret,
		&a.Moderator, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Role = domain.Role(role)
	return a, nil
}
