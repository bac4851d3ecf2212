// Package leads persists eBook download leads.
package leads

import (
	"context"
	"fmt"

	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/dbx"
	"github.com/konasal/konasal-backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores lead. An email that was already submitted yields
// common.ErrorAlreadyExists and nothing is written.
func (r *PostgresRepository) Create(ctx context.Context, lead *models.EbookLead) (*models.EbookLead, error) {
	query :=
		`INSERT INTO ebook_leads (name, email, phone, other_info)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, lead.Name, lead.Email, lead.Phone, lead.OtherInfo).
		Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return lead, nil
}

// List returns all leads, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.EbookLead, error) {
	query :=
		`SELECT id, name, email, phone, other_info, created_at, updated_at
		 FROM ebook_leads
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.EbookLead, 0)
	for rows.Next() {
		l := &models.EbookLead{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.OtherInfo, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ebook_leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
