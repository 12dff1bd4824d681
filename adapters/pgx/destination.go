package pgx

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/core"
)

const destinationColumns = `id, name, country, description, price::text, duration, image, rating, category, featured`

func scanDestination(row interface{ Scan(...any) error }) (*core.Destination, error) {
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

func (a *Adapter) CreateDestination(ctx context.Context, d *core.Destination) error {
	query := `INSERT INTO destinations (id, name, country, description, price, duration, image, rating, category, featured)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := a.db.Exec(ctx, query,
		d.ID, d.Name, d.Country, d.Description, d.Price.String(), d.Duration, d.Image, d.Rating, d.Category, d.Featured,
	)
	if err != nil {
		return fmt.Errorf("insert destination: %w", err)
	}
	return nil
}

func (a *Adapter) GetDestination(ctx context.Context, id string) (*core.Destination, error) {
	d, err := scanDestination(a.db.QueryRow(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, core.ErrDestinationNotFound)
	}
	return d, nil
}

func (a *Adapter) ListDestinations(ctx context.Context) ([]*core.Destination, error) {
	rows, err := a.db.Query(ctx, `SELECT `+destinationColumns+` FROM destinations ORDER BY seq`)
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

func (a *Adapter) UpdateDestination(ctx context.Context, d *core.Destination) error {
	q := `UPDATE destinations SET name = $1, country = $2, description = $3, price = $4, duration = $5,
	      image = $6, rating = $7, category = $8, featured = $9 WHERE id = $10`
	tag, err := a.db.Exec(ctx, q,
		d.Name, d.Country, d.Description, d.Price.String(), d.Duration, d.Image, d.Rating, d.Category, d.Featured, d.ID,
	)
	return affected(tag, err, core.ErrDestinationNotFound)
}

func (a *Adapter) DeleteDestination(ctx context.Context, id string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM destinations WHERE id = $1`, id)
	return affected(tag, err, core.ErrDestinationNotFound)
}
