// Package tickets stores the pending second-factor login tickets in
// PostgreSQL.
package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/dbx"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ticket string, userID string, expiresAt time.Time) error {
	query :=
		`INSERT INTO login_tickets (ticket, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 `
	if _, err := r.db.ExecContext(ctx, query, ticket, userID, expiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// Find returns the ticket whether or not it has expired; the caller checks
// ExpiresAt. An unknown ticket yields common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, ticket string) (*models.LoginTicket, error) {
	query :=
		`SELECT user_id, expires_at FROM login_tickets
		 WHERE ticket = $1
		 `
	t := &models.LoginTicket{Ticket: ticket}
	if err := r.db.QueryRowContext(ctx, query, ticket).Scan(&t.UserID, &t.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Delete consumes the ticket. Only one caller can remove a given row, so a
// ticket that is already gone yields common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ticket string) error {
	query :=
		`DELETE FROM login_tickets
		 WHERE ticket = $1
		 `
	res, err := r.db.ExecContext(ctx, query, ticket)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteExpired removes every ticket whose deadline is not after now and
// reports how many went.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query :=
		`DELETE FROM login_tickets
		 WHERE expires_at <= $1
		 `
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
