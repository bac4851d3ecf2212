package leads

import (
	"context"

	"github.com/konasal/konasal-backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, lead *models.EbookLead) (*models.EbookLead, error)
	List(ctx context.Context) ([]*models.EbookLead, error)
	Delete(ctx context.Context, id string) error
}
