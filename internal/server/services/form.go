package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/server/models"
	"github.com/konasal/konasal-backend/internal/server/repositories/repomanager"
)

// FormService stores generic form submissions. Anyone may submit; listing
// and deletion are gated by the router.
type FormService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFormService(db *sql.DB, repomanager repomanager.RepositoryManager) *FormService {
	return &FormService{db: db, repomanager: repomanager}
}

// Submit stores a form. userId must name an existing user and data must be a
// non-empty JSON value; violations yield common.ErrorValidation.
func (s *FormService) Submit(ctx context.Context, userID, formType string, data json.RawMessage) (*models.FormSubmission, error) {
	userID, formType = strings.TrimSpace(userID), strings.TrimSpace(formType)
	if userID == "" || formType == "" || isEmptyJSON(data) {
		return nil, fmt.Errorf("%w: userId, formType and data are required", common.ErrorValidation)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("%w: %w %s", common.ErrorValidation, common.ErrUnknownUser, userID)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: data is not valid JSON", common.ErrorValidation)
	}

	f, err := s.repomanager.Forms(s.db).Create(ctx, &models.FormSubmission{UserID: userID, FormType: formType, Data: data})
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating form: %w", err)
	}
	return f, nil
}

func (s *FormService) List(ctx context.Context) ([]*models.FormSubmission, error) {
	forms, err := s.repomanager.Forms(s.db).ListWithSubmitter(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing forms: %w", err)
	}
	return forms, nil
}

func (s *FormService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Forms(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting form: %w", err)
	}
	return nil
}

// isEmptyJSON treats a missing body field, null, false and "" as no data.
func isEmptyJSON(data json.RawMessage) bool {
	switch strings.TrimSpace(string(data)) {
	case "", "null", "false", `""`:
		return true
	}
	return false
}
