package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/logging"
	sc "github.com/konasal/konasal-backend/internal/server/config"
	"github.com/konasal/konasal-backend/internal/server/models"
	"github.com/konasal/konasal-backend/internal/server/repositories/repomanager"
	"github.com/xuri/excelize/v2"
)

// LeadService captures eBook leads and hands out the download link.
type LeadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewLeadService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *LeadService {
	return &LeadService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		logger:      logger,
	}
}

// Submit stores a lead. A repeated email yields common.ErrorAlreadyExists and
// no second record. The returned download URL is empty when eBook storage
// is not configured or presigning fails; the lead is kept either way.
func (s *LeadService) Submit(ctx context.Context, lead *models.EbookLead) (*models.EbookLead, string, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Phone = strings.TrimSpace(lead.Phone)
	if lead.Name == "" || lead.Email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", common.ErrorValidation)
	}

	created, err := s.repomanager.Leads(s.db).Create(ctx, lead)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating lead: %w", err)
	}

	if !s.config.EbookStorageEnabled() {
		return created, "", nil
	}

	url, err := s.GetEbookDownloadUrl(ctx)
	if err != nil {
		s.logger.Warn(ctx, "ebook link not presigned", "lead_id", created.ID, "error", err)
		return created, "", nil
	}
	return created, url, nil
}

func (s *LeadService) List(ctx context.Context) ([]*models.EbookLead, error) {
	leads, err := s.repomanager.Leads(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing leads: %w", err)
	}
	return leads, nil
}

// Delete removes a lead. Ids that are not UUIDs cannot exist and are
// reported as common.ErrorNotFound.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Leads(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting lead: %w", err)
	}
	return nil
}

const leadsSheet = "Leads"

// WriteExport writes all leads, newest first, to w as an xlsx workbook.
func (s *LeadService) WriteExport(ctx context.Context, w io.Writer) error {
	leads, err := s.List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadsSheet); err != nil {
		return fmt.Errorf("%w: export sheet: %v", common.ErrorInternal, err)
	}

	headers := []any{"Name", "Email", "Phone", "Other info", "Submitted at"}
	if err := f.SetSheetRow(leadsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("%w: export header: %v", common.ErrorInternal, err)
	}

	for i, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: export row: %v", common.ErrorInternal, err)
		}
		row := []any{l.Name, l.Email, l.Phone, l.OtherInfo, l.CreatedAt.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(leadsSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: export row: %v", common.ErrorInternal, err)
		}
	}

	_ = f.SetColWidth(leadsSheet, "A", "B", 28)
	_ = f.SetColWidth(leadsSheet, "C", "C", 16)
	_ = f.SetColWidth(leadsSheet, "D", "D", 40)
	_ = f.SetColWidth(leadsSheet, "E", "E", 22)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing export: %w", err)
	}
	return nil
}
