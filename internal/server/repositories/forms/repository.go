package forms

import (
	"context"

	"github.com/konasal/konasal-backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, form *models.FormSubmission) (*models.FormSubmission, error)
	ListWithSubmitter(ctx context.Context) ([]*models.FormSubmission, error)
	Delete(ctx context.Context, id string) error
}
