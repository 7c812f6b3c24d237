package tickets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ticket string, userID string, expiresAt time.Time) error
	Find(ctx context.Context, ticket string) (*models.LoginTicket, error)
	Delete(ctx context.Context, ticket string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
