// Package users provides the PostgreSQL-backed account repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/dbx"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, email, salt, auth_hash, is_premium, premium_key, twofa_enabled, twofa_secret, created_at
		 FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user and fills in its id and creation time. A taken
// email yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, salt, auth_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.Email, user.Salt, user.AuthHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE id = $1
		 `, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user       models.User
		premiumKey sql.NullString
		secret     sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Salt, &user.AuthHash,
		&user.Premium, &premiumKey, &user.TwoFAEnabled, &secret, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.PremiumKey = premiumKey.String
	user.TwoFASecret = secret.String
	return &user, nil
}

// SetPremium flips the tier. Turning premium off also burns the key that
// unlocked it.
func (r *PostgresRepository) SetPremium(ctx context.Context, id string, premium bool) error {
	query :=
		`UPDATE users SET is_premium = $2,
		 premium_key = CASE WHEN $2 THEN premium_key END
		 WHERE id = $1
		 `
	return r.updateOne(ctx, query, id, premium)
}

// SetSecondFactor stores the TOTP secret and enabled flag. An empty secret
// clears the column.
func (r *PostgresRepository) SetSecondFactor(ctx context.Context, id string, secret string, enabled bool) error {
	query :=
		`UPDATE users SET twofa_secret = $2, twofa_enabled = $3
		 WHERE id = $1
		 `
	return r.updateOne(ctx, query, id, sql.NullString{String: secret, Valid: secret != ""}, enabled)
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
