package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/core"
)

// Store keeps users, sessions and the ledger in the local SQLite file.
// Timestamps are written in UTC so they compare as text.
type Store struct {
	db *sql.DB
}

var _ core.StorageAdapter = (*Store)(nil)

type scanner interface{ Scan(...any) error }

func utc(t time.Time) time.Time { return t.UTC() }

// ============================================
// USERS
// ============================================

const userColumns = `id, email, name, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	query := `INSERT INTO users (id, email, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, u.ID, u.Email, u.Name, utc(u.CreatedAt), utc(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*core.User, error) {
	u := &core.User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err, core.ErrUserNotFound)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *core.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE users SET email = ?, name = ?, updated_at = ? WHERE id = ?`,
		u.Email, u.Name, u.UpdatedAt, u.ID)
	if isUniqueViolation(err) {
		return core.ErrAccountExists
	}
	return affected(res, err, core.ErrUserNotFound)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return affected(res, err, core.ErrUserNotFound)
}

// ============================================
// ACCOUNTS
// ============================================

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) error {
	query := `INSERT INTO accounts (id, user_id, provider_id, account_id, password, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.ProviderID, a.AccountID, a.Password, utc(a.CreatedAt), utc(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*core.Account, error) {
	query := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
	          FROM accounts WHERE user_id = ? AND provider_id = ? ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		a := &core.Account{}
		var password sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProviderID, &a.AccountID, &password, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if password.Valid {
			a.Password = &password.String
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) UpdateAccount(ctx context.Context, a *core.Account) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET password = ?, updated_at = ? WHERE id = ?`,
		a.Password, a.UpdatedAt, a.ID)
	return affected(res, err, core.ErrUserNotFound)
}

// DeleteAccount succeeds when the account is already gone.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}

// ============================================
// PROFILES
// ============================================

const profileColumns = `id, email, full_name, role, created_at, last_login`

func scanProfile(row scanner) (*core.Profile, error) {
	p := &core.Profile{}
	var lastLogin sql.NullTime
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		p.LastLogin = &lastLogin.Time
	}
	return p, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *Store) CreateProfile(ctx context.Context, p *core.Profile) error {
	query := `INSERT INTO profiles (id, email, full_name, role, created_at, last_login) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Email, p.FullName, string(p.Role), utc(p.CreatedAt), nullTime(p.LastLogin))
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*core.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, core.ErrUserNotFound)
	}
	return p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]*core.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY rowid`)
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

func (s *Store) UpdateProfile(ctx context.Context, p *core.Profile) error {
	q := `UPDATE profiles SET email = ?, full_name = ?, role = ?, last_login = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, p.Email, p.FullName, string(p.Role), nullTime(p.LastLogin), p.ID)
	return affected(res, err, core.ErrUserNotFound)
}

func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return affected(res, err, core.ErrUserNotFound)
}

// ============================================
// SESSIONS
// ============================================

const sessionColumns = `id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at`

func scanSession(row scanner) (*core.Session, error) {
	sess := &core.Session{}
	err := row.Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.IPAddress, &sess.UserAgent, &sess.ExpiresAt, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *core.Session) error {
	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.UserID, sess.TokenHash, sess.IPAddress, sess.UserAgent,
		utc(sess.ExpiresAt), utc(sess.CreatedAt), utc(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, tokenHash))
	if err != nil {
		return nil, notFound(err, core.ErrSessionNotFound)
	}
	return sess, nil
}

func (s *Store) GetSessionByID(ctx context.Context, id string) (*core.Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, core.ErrSessionNotFound)
	}
	return sess, nil
}

func (s *Store) GetUserSessions(ctx context.Context, userID string) ([]*core.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*core.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) UpdateSession(ctx context.Context, sess *core.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	q := `UPDATE sessions SET expires_at = ?, ip_address = ?, user_agent = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, utc(sess.ExpiresAt), sess.IPAddress, sess.UserAgent, sess.UpdatedAt, sess.ID)
	return affected(res, err, core.ErrSessionNotFound)
}

func (s *Store) DeleteSessionByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return affected(res, err, core.ErrSessionNotFound)
}

func (s *Store) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return affected(res, err, core.ErrSessionNotFound)
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	return s.deleteCount(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	return s.deleteCount(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
}

func (s *Store) deleteCount(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ============================================
// DESTINATIONS
// ============================================

const destinationColumns = `id, name, country, description, price, duration, image, rating, category, featured`

func scanDestination(row scanner) (*core.Destination, error) {
	d := &core.Destination{}
	var price string
	err := row.Scan(&d.ID, &d.Name, &d.Country, &d.Description, &price, &d.Duration, &d.Image, &d.Rating, &d.Category, &d.Featured)
	if err != nil {
		return nil, err
	}
	if d.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("destination %s price: %w", d.ID, err)
	}
	return d, nil
}

func (s *Store) CreateDestination(ctx context.Context, d *core.Destination) error {
	query := `INSERT INTO destinations (` + destinationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Country, d.Description, d.Price.String(), d.Duration, d.Image, d.Rating, string(d.Category), d.Featured,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrInvalidInput
		}
		return fmt.Errorf("insert destination: %w", err)
	}
	return nil
}

func (s *Store) GetDestination(ctx context.Context, id string) (*core.Destination, error) {
	d, err := scanDestination(s.db.QueryRowContext(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, core.ErrDestinationNotFound)
	}
	return d, nil
}

func (s *Store) ListDestinations(ctx context.Context) ([]*core.Destination, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+destinationColumns+` FROM destinations ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDestination(ctx context.Context, d *core.Destination) error {
	q := `UPDATE destinations SET name = ?, country = ?, description = ?, price = ?, duration = ?,
	      image = ?, rating = ?, category = ?, featured = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q,
		d.Name, d.Country, d.Description, d.Price.String(), d.Duration, d.Image, d.Rating, string(d.Category), d.Featured, d.ID,
	)
	return affected(res, err, core.ErrDestinationNotFound)
}

func (s *Store) DeleteDestination(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM destinations WHERE id = ?`, id)
	return affected(res, err, core.ErrDestinationNotFound)
}

// ============================================
// BOOKINGS
// ============================================

const bookingColumns = `id, user_id, destination_id, destination, start_date, end_date, guests, total_price, status, created_at`

func scanBooking(row scanner) (*core.Booking, error) {
	b := &core.Booking{}
	var snapshot, total string
	err := row.Scan(&b.ID, &b.UserID, &b.DestinationID, &snapshot, &b.StartDate, &b.EndDate, &b.Guests, &total, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &b.Destination); err != nil {
		return nil, fmt.Errorf("booking %s snapshot: %w", b.ID, err)
	}
	if b.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("booking %s total: %w", b.ID, err)
	}
	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, b *core.Booking) error {
	snapshot, err := json.Marshal(b.Destination)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		b.ID, b.UserID, b.DestinationID, string(snapshot), utc(b.StartDate), utc(b.EndDate),
		b.Guests, b.TotalPrice.String(), string(b.Status), utc(b.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrInvalidInput
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*core.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, core.ErrBookingNotFound)
	}
	return b, nil
}

func (s *Store) ListBookings(ctx context.Context) ([]*core.Booking, error) {
	return s.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY rowid`)
}

// ListUserBookings returns userID's bookings in insertion order.
func (s *Store) ListUserBookings(ctx context.Context, userID string) ([]*core.Booking, error) {
	return s.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY rowid`, userID)
}

func (s *Store) listBookings(ctx context.Context, query string, args ...any) ([]*core.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status core.BookingStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	return affected(res, err, core.ErrBookingNotFound)
}

func (s *Store) DeleteUserBookings(ctx context.Context, userID string) (int, error) {
	return s.deleteCount(ctx, `DELETE FROM bookings WHERE user_id = ?`, userID)
}
