package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentinel-console/internal/models"
)

var scanSortColumns = map[string]string{
	"scanType":  "scan_type",
	"startTime": "start_time",
	"endTime":   "end_time",
	"status":    "status",
	"findings":  "findings",
}

// ScanListOptions filters and orders security scan queries
type ScanListOptions struct {
	ClientID      string
	Status        string
	ScanType      string
	StartedAfter  time.Time
	StartedBefore time.Time
	SortBy        string
	SortDir       SortDirection
	Limit         int
}

// ScanPatch holds the optional fields of a security scan update
type ScanPatch struct {
	Status         *models.ScanStatus
	EndTime        *time.Time
	Findings       *int
	SystemsCovered *int
	ReportID       *string
}

func scanSecurityScan(row rowScanner) (*models.SecurityScan, error) {
	var scan models.SecurityScan
	var endTime sql.NullTime
	var reportID sql.NullString

	err := row.Scan(
		&scan.ID,
		&scan.ClientID,
		&scan.ScanType,
		&scan.StartTime,
		&endTime,
		&scan.Status,
		&scan.Findings,
		&scan.SystemsCovered,
		&scan.InitiatedBy,
		&reportID,
	)
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		t := endTime.Time
		scan.EndTime = &t
	}
	scan.ReportID = reportID.String

	return &scan, nil
}

// CreateScan persists a new security scan and returns the stored record
func (s *Store) CreateScan(scan *models.SecurityScan) (*models.SecurityScan, error) {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO security_scans (id, client_id, scan_type, start_time, end_time, status, findings, systems_covered, initiated_by, report_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.ClientID, scan.ScanType, scan.StartTime, scan.EndTime,
		scan.Status, scan.Findings, scan.SystemsCovered, scan.InitiatedBy,
		nullString(scan.ReportID),
	)
	if err != nil {
		return nil, dataErr("createScan", err)
	}

	return s.GetScan(scan.ID)
}

// GetScan retrieves a security scan by id
func (s *Store) GetScan(id string) (*models.SecurityScan, error) {
	scan, err := scanSecurityScan(s.QueryRow(
		`SELECT id, client_id, scan_type, start_time, end_time, status, findings, systems_covered, initiated_by, report_id
		 FROM security_scans WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getScan", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getScan", err)
	}
	return scan, nil
}

// ListScans retrieves security scans matching the given options
func (s *Store) ListScans(opts ScanListOptions) ([]*models.SecurityScan, error) {
	query := `SELECT id, client_id, scan_type, start_time, end_time, status, findings, systems_covered, initiated_by, report_id FROM security_scans`
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
	if opts.ScanType != "" {
		conditions = append(conditions, "scan_type = ?")
		args = append(args, opts.ScanType)
	}
	if !opts.StartedAfter.IsZero() {
		conditions = append(conditions, "start_time > ?")
		args = append(args, opts.StartedAfter)
	}
	if !opts.StartedBefore.IsZero() {
		conditions = append(conditions, "start_time < ?")
		args = append(args, opts.StartedBefore)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += sortClause(scanSortColumns, opts.SortBy, "start_time", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listScans", err)
	}
	defer rows.Close()

	var scans []*models.SecurityScan
	for rows.Next() {
		scan, err := scanSecurityScan(rows)
		if err != nil {
			return nil, dataErr("listScans", fmt.Errorf("failed to scan security scan row: %w", err))
		}
		scans = append(scans, scan)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listScans", err)
	}

	return scans, nil
}

// UpdateScan applies a merge patch to a security scan and returns the updated record
func (s *Store) UpdateScan(id string, patch ScanPatch) (*models.SecurityScan, error) {
	s.Lock()
	defer s.Unlock()

	scan, err := s.GetScan(id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		scan.Status = *patch.Status
	}
	if patch.EndTime != nil {
		scan.EndTime = patch.EndTime
	}
	if patch.Findings != nil {
		scan.Findings = *patch.Findings
	}
	if patch.SystemsCovered != nil {
		scan.SystemsCovered = *patch.SystemsCovered
	}
	if patch.ReportID != nil {
		scan.ReportID = *patch.ReportID
	}

	_, err = s.Exec(
		`UPDATE security_scans SET status = ?, end_time = ?, findings = ?, systems_covered = ?, report_id = ?
		 WHERE id = ?`,
		scan.Status, scan.EndTime, scan.Findings, scan.SystemsCovered, nullString(scan.ReportID),
		id,
	)
	if err != nil {
		return nil, dataErr("updateScan", err)
	}

	return scan, nil
}

// DeleteScan removes a security scan and returns the deleted record
func (s *Store) DeleteScan(id string) (*models.SecurityScan, error) {
	scan, err := s.GetScan(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM security_scans WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteScan", err)
	}

	return scan, nil
}
