package sqlite

import (
	"context"

	"github.com/tripnest/tripnest/internal/devapi/domain"
	"github.com/tripnest/tripnest/internal/identity"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, name, phone, password_hash, role, status, agency_id, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.Name, a.Phone, a.PasswordHash,
		a.Role.String(), string(a.Status), a.AgencyID,
		toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func scanUser(row scanner) (domain.Account, error) {
	var (
		a                domain.Account
		role, status     string
		created, updated int64
	)
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Phone, &a.PasswordHash,
		&role, &status, &a.AgencyID, &created, &updated)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	if a.Role, err = identity.ParseRole(role); err != nil {
		return domain.Account{}, err
	}
	if a.Status, err = identity.ParseStatus(status); err != nil {
		return domain.Account{}, err
	}
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}
