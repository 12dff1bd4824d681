package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/core"
)

const bookingColumns = `id, user_id, destination_id, destination, start_date, end_date, guests, total_price::text, status, created_at`

func scanBooking(row interface{ Scan(...any) error }) (*core.Booking, error) {
	b := &core.Booking{}
	var snapshot []byte
	var total string
	err := row.Scan(&b.ID, &b.UserID, &b.DestinationID, &snapshot, &b.StartDate, &b.EndDate, &b.Guests, &total, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &b.Destination); err != nil {
		return nil, fmt.Errorf("booking %s snapshot: %w", b.ID, err)
	}
	if b.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("booking %s total: %w", b.ID, err)
	}
	return b, nil
}

func (a *Adapter) CreateBooking(ctx context.Context, b *core.Booking) error {
	snapshot, err := json.Marshal(b.Destination)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `INSERT INTO bookings (id, user_id, destination_id, destination, start_date, end_date, guests, total_price, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = a.db.Exec(ctx, query,
		b.ID, b.UserID, b.DestinationID, snapshot, b.StartDate, b.EndDate, b.Guests, b.TotalPrice.String(), b.Status, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (a *Adapter) GetBooking(ctx context.Context, id string) (*core.Booking, error) {
	b, err := scanBooking(a.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, core.ErrBookingNotFound)
	}
	return b, nil
}

func (a *Adapter) ListBookings(ctx context.Context) ([]*core.Booking, error) {
	return a.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY seq`)
}

// ListUserBookings returns userID's bookings in insertion order.
func (a *Adapter) ListUserBookings(ctx context.Context, userID string) ([]*core.Booking, error) {
	return a.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY seq`, userID)
}

func (a *Adapter) listBookings(ctx context.Context, query string, args ...any) ([]*core.Booking, error) {
	rows, err := a.db.Query(ctx, query, args...)
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

func (a *Adapter) UpdateBookingStatus(ctx context.Context, id string, status core.BookingStatus) error {
	tag, err := a.db.Exec(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, status, id)
	return affected(tag, err, core.ErrBookingNotFound)
}

func (a *Adapter) DeleteUserBookings(ctx context.Context, userID string) (int, error) {
	tag, err := a.db.Exec(ctx, `DELETE FROM bookings WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
