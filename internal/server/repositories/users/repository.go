package users

import (
	"context"

	"github.com/dmitrijs2005/vaultify/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetPremium(ctx context.Context, id string, premium bool) error
	SetSecondFactor(ctx context.Context, id string, secret string, enabled bool) error
}
