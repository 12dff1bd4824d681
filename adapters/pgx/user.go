package pgx

import (
	"context"
	"fmt"

	"github.com/lborres/wanderlust/core"
)

const userColumns = `id, email, name, created_at, updated_at`

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO users (id, email, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := a.db.Exec(ctx, query, user.ID, user.Email, user.Name, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return a.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return a.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (a *Adapter) getUser(ctx context.Context, query, arg string) (*core.User, error) {
	user := &core.User{}
	err := a.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err, core.ErrUserNotFound)
	}
	return user, nil
}

func (a *Adapter) UpdateUser(ctx context.Context, user *core.User) error {
	q := `UPDATE users SET email = $1, name = $2, updated_at = now() WHERE id = $3 RETURNING updated_at`
	err := a.db.QueryRow(ctx, q, user.Email, user.Name, user.ID).Scan(&user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return notFound(err, core.ErrUserNotFound)
	}
	return nil
}

func (a *Adapter) DeleteUser(ctx context.Context, id string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affected(tag, err, core.ErrUserNotFound)
}
