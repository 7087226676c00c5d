package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sentinel-console/internal/models"
)

var reportSortColumns = map[string]string{
	"title":       "title",
	"reportType":  "report_type",
	"status":      "status",
	"createdDate": "created_date",
}

// ReportListOptions filters and orders assessment report queries
type ReportListOptions struct {
	ClientID string
	Status   string
	SortBy   string
	SortDir  SortDirection
	Limit    int
}

// ReportPatch holds the optional fields of an assessment report update
type ReportPatch struct {
	Title      *string
	ReportType *string
	Status     *models.ReportStatus
	Summary    *string
}

func scanReport(row rowScanner) (*models.AssessmentReport, error) {
	var report models.AssessmentReport
	var summary sql.NullString

	err := row.Scan(
		&report.ID,
		&report.ClientID,
		&report.Title,
		&report.ReportType,
		&report.Status,
		&report.CreatedDate,
		&summary,
	)
	if err != nil {
		return nil, err
	}

	report.Summary = summary.String

	return &report, nil
}

// CreateReport persists a new assessment report and returns the stored record
func (s *Store) CreateReport(report *models.AssessmentReport) (*models.AssessmentReport, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO assessment_reports (id, client_id, title, report_type, status, created_date, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.ClientID, report.Title, report.ReportType,
		report.Status, report.CreatedDate, nullString(report.Summary),
	)
	if err != nil {
		return nil, dataErr("createReport", err)
	}

	return s.GetReport(report.ID)
}

// GetReport retrieves an assessment report by id
func (s *Store) GetReport(id string) (*models.AssessmentReport, error) {
	report, err := scanReport(s.QueryRow(
		`SELECT id, client_id, title, report_type, status, created_date, summary
		 FROM assessment_reports WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getReport", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getReport", err)
	}
	return report, nil
}

// ListReports retrieves assessment reports matching the given options
func (s *Store) ListReports(opts ReportListOptions) ([]*models.AssessmentReport, error) {
	query := `SELECT id, client_id, title, report_type, status, created_date, summary FROM assessment_reports`
	var args []any
	var conditions []string

	if opts.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, opts.ClientID)
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, opts.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += sortClause(reportSortColumns, opts.SortBy, "created_date", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listReports", err)
	}
	defer rows.Close()

	var reports []*models.AssessmentReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, dataErr("listReports", fmt.Errorf("failed to scan report row: %w", err))
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listReports", err)
	}

	return reports, nil
}

// UpdateReport applies a merge patch to an assessment report and returns the updated record
func (s *Store) UpdateReport(id string, patch ReportPatch) (*models.AssessmentReport, error) {
	s.Lock()
	defer s.Unlock()

	report, err := s.GetReport(id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		report.Title = *patch.Title
	}
	if patch.ReportType != nil {
		report.ReportType = *patch.ReportType
	}
	if patch.Status != nil {
		report.Status = *patch.Status
	}
	if patch.Summary != nil {
		report.Summary = *patch.Summary
	}

	_, err = s.Exec(
		`UPDATE assessment_reports SET title = ?, report_type = ?, status = ?, summary = ?
		 WHERE id = ?`,
		report.Title, report.ReportType, report.Status, nullString(report.Summary),
		id,
	)
	if err != nil {
		return nil, dataErr("updateReport", err)
	}

	return report, nil
}

// DeleteReport removes an assessment report and returns the deleted record
func (s *Store) DeleteReport(id string) (*models.AssessmentReport, error) {
	report, err := s.GetReport(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM assessment_reports WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteReport", err)
	}

	return report, nil
}
