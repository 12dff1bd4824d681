package pgx

import (
	"context"
	"fmt"

	"github.com/lborres/wanderlust/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO accounts (id, user_id, provider_id, account_id, password, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := a.db.Exec(ctx, query,
		acc.ID, acc.UserID, acc.ProviderID, acc.AccountID, acc.Password, acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (a *Adapter) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*core.Account, error) {
	query := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
	          FROM accounts WHERE user_id = $1 AND provider_id = $2 ORDER BY created_at`

	rows, err := a.db.Query(ctx, query, userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc := &core.Account{}
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.ProviderID, &acc.AccountID, &acc.Password, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (a *Adapter) UpdateAccount(ctx context.Context, acc *core.Account) error {
	q := `UPDATE accounts SET password = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`
	err := a.db.QueryRow(ctx, q, acc.Password, acc.ID).Scan(&acc.UpdatedAt)
	return notFound(err, core.ErrUserNotFound)
}

// DeleteAccount succeeds when the account is already gone.
func (a *Adapter) DeleteAccount(ctx context.Context, id string) error {
	_, err := a.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}
