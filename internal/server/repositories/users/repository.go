package users

import (
	"context"
	"time"

	"github.com/konasal/konasal-backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	ResetPassword(ctx context.Context, userID, token string, now time.Time, passwordHash string) error
}
