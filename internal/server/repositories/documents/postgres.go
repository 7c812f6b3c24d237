package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, kind string) ([]byte, error) {
	query :=
		`SELECT blob FROM documents
		 WHERE user_id = $1 AND kind = $2
		 `
	var blob []byte
	if err := r.db.QueryRowContext(ctx, query, userID, kind).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return blob, nil
}

func (r *PostgresRepository) Put(ctx context.Context, userID string, kind string, blob []byte) error {
	query :=
		`INSERT INTO documents (user_id, kind, blob, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id, kind)
		 DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at
		 `
	// jsonb takes text; a raw []byte would go out as bytea
	if _, err := r.db.ExecContext(ctx, query, userID, kind, string(blob)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
