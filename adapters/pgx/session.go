package pgx

import (
	"context"
	"fmt"

	"github.com/lborres/wanderlust/core"
)

const sessionColumns = `id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*core.Session, error) {
	s := &core.Session{}
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := a.db.Exec(ctx, query, s.ID, s.UserID, s.TokenHash, s.IPAddress, s.UserAgent, s.ExpiresAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	s, err := scanSession(a.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash))
	if err != nil {
		return nil, notFound(err, core.ErrSessionNotFound)
	}
	return s, nil
}

func (a *Adapter) GetSessionByID(ctx context.Context, id string) (*core.Session, error) {
	s, err := scanSession(a.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, core.ErrSessionNotFound)
	}
	return s, nil
}

func (a *Adapter) GetUserSessions(ctx context.Context, userID string) ([]*core.Session, error) {
	rows, err := a.db.Query(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*core.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (a *Adapter) UpdateSession(ctx context.Context, s *core.Session) error {
	q := `UPDATE sessions SET expires_at = $1, ip_address = $2, user_agent = $3, updated_at = now() WHERE id = $4 RETURNING updated_at`
	err := a.db.QueryRow(ctx, q, s.ExpiresAt, s.IPAddress, s.UserAgent, s.ID).Scan(&s.UpdatedAt)
	return notFound(err, core.ErrSessionNotFound)
}

func (a *Adapter) DeleteSessionByID(ctx context.Context, id string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return affected(tag, err, core.ErrSessionNotFound)
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return affected(tag, err, core.ErrSessionNotFound)
}

func (a *Adapter) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	tag, err := a.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := a.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
