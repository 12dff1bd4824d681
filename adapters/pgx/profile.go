package pgx

import (
	"context"
	"fmt"

	"github.com/lborres/wanderlust/core"
)

const profileColumns = `id, email, full_name, role, created_at, last_login`

func scanProfile(row interface{ Scan(...any) error }) (*core.Profile, error) {
	p := &core.Profile{}
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.LastLogin); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *Adapter) CreateProfile(ctx context.Context, p *core.Profile) error {
	query := `INSERT INTO profiles (id, email, full_name, role, created_at, last_login) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := a.db.Exec(ctx, query, p.ID, p.Email, p.FullName, p.Role, p.CreatedAt, p.LastLogin); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (a *Adapter) GetProfile(ctx context.Context, id string) (*core.Profile, error) {
	p, err := scanProfile(a.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, core.ErrUserNotFound)
	}
	return p, nil
}

func (a *Adapter) ListProfiles(ctx context.Context) ([]*core.Profile, error) {
	rows, err := a.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (a *Adapter) UpdateProfile(ctx context.Context, p *core.Profile) error {
	q := `UPDATE profiles SET email = $1, full_name = $2, role = $3, last_login = $4 WHERE id = $5`
	tag, err := a.db.Exec(ctx, q, p.Email, p.FullName, p.Role, p.LastLogin, p.ID)
	return affected(tag, err, core.ErrUserNotFound)
}

func (a *Adapter) DeleteProfile(ctx context.Context, id string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	return affected(tag, err, core.ErrUserNotFound)
}
