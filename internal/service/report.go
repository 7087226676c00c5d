package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// ReportService manages assessment reports
type ReportService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewReportService creates a new report service
func NewReportService(s *store.Store) *ReportService {
	return &ReportService{
		store:  s,
		logger: log.With().Str("component", "report_service").Logger(),
	}
}

// CreateReportInput holds the caller-supplied fields of a new report
type CreateReportInput struct {
	ClientID   string `json:"clientId"`
	Title      string `json:"title"`
	ReportType string `json:"reportType"`
	Summary    string `json:"summary"`
}

// Create persists a new assessment report. New reports start as drafts.
func (s *ReportService) Create(in CreateReportInput) (*models.AssessmentReport, error) {
	if in.ClientID == "" {
		return nil, requiredErr("clientId")
	}
	if in.Title == "" {
		return nil, requiredErr("title")
	}

	report, err := s.store.CreateReport(&models.AssessmentReport{
		ClientID:    in.ClientID,
		Title:       in.Title,
		ReportType:  in.ReportType,
		Status:      models.ReportStatusDraft,
		CreatedDate: time.Now(),
		Summary:     in.Summary,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", report.ID).Str("clientId", report.ClientID).Msg("Report created")

	return report, nil
}

// List retrieves reports matching the given options
func (s *ReportService) List(opts store.ReportListOptions) ([]*models.AssessmentReport, error) {
	if opts.Status != "" {
		if _, err := models.ParseReportStatus(opts.Status); err != nil {
			return nil, err
		}
	}
	return s.store.ListReports(opts)
}

// GetByID retrieves a single report
func (s *ReportService) GetByID(id string) (*models.AssessmentReport, error) {
	return s.store.GetReport(id)
}

// Update applies a merge patch to a report
func (s *ReportService) Update(id string, patch store.ReportPatch) (*models.AssessmentReport, error) {
	if patch.Status != nil {
		if _, err := models.ParseReportStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateReport(id, patch)
}

// Delete removes a report and returns the deleted record
func (s *ReportService) Delete(id string) (*models.AssessmentReport, error) {
	report, err := s.store.DeleteReport(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("Report deleted")

	return report, nil
}
