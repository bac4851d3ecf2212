// Package forms persists generic form submissions. The payload is kept as
// JSONB exactly as the client sent it.
package forms

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

// Create stores form. A user_id that matches no user yields
// common.ErrorValidation together with common.ErrUnknownUser.
func (r *PostgresRepository) Create(ctx context.Context, form *models.FormSubmission) (*models.FormSubmission, error) {
	query :=
		`INSERT INTO form_submissions (user_id, form_type, data)
		 VALUES ($1, $2, $3)
		 RETURNING id, submitted_at
		 `

	err := r.db.QueryRowContext(ctx, query, form.UserID, form.FormType, []byte(form.Data)).
		Scan(&form.ID, &form.SubmittedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %w %s", common.ErrorValidation, common.ErrUnknownUser, form.UserID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return form, nil
}

// ListWithSubmitter returns every submission, newest first, with the
// submitting user's name and email.
func (r *PostgresRepository) ListWithSubmitter(ctx context.Context) ([]*models.FormSubmission, error) {
	query :=
		`SELECT f.id, f.user_id, f.form_type, f.data, f.submitted_at, u.name, u.email
		 FROM form_submissions f
		 JOIN users u ON u.id = f.user_id
		 ORDER BY f.submitted_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.FormSubmission, 0)
	for rows.Next() {
		f := &models.FormSubmission{Submitter: &models.Submitter{}}
		var data []byte
		if err := rows.Scan(&f.ID, &f.UserID, &f.FormType, &data, &f.SubmittedAt, &f.Submitter.Name, &f.Submitter.Email); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		f.Data = data
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM form_submissions WHERE id = $1`, id)
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
