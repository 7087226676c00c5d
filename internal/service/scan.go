package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// ScanService manages security scans and their lifecycle
type ScanService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewScanService creates a new scan service
func NewScanService(s *store.Store) *ScanService {
	return &ScanService{
		store:  s,
		logger: log.With().Str("component", "scan_service").Logger(),
	}
}

// CreateScanInput holds the caller-supplied fields of a new security scan
type CreateScanInput struct {
	ClientID       string `json:"clientId"`
	ScanType       string `json:"scanType"`
	InitiatedBy    string `json:"initiatedBy"`
	SystemsCovered int    `json:"systemsCovered"`
}

// Create schedules a new scan. New scans start in the scheduled state with
// zero findings and startTime set to the creation time.
func (s *ScanService) Create(in CreateScanInput) (*models.SecurityScan, error) {
	if in.ClientID == "" {
		return nil, requiredErr("clientId")
	}
	if in.ScanType == "" {
		return nil, requiredErr("scanType")
	}

	scan, err := s.store.CreateScan(&models.SecurityScan{
		ClientID:       in.ClientID,
		ScanType:       in.ScanType,
		StartTime:      time.Now(),
		Status:         models.ScanStatusScheduled,
		Findings:       0,
		SystemsCovered: in.SystemsCovered,
		InitiatedBy:    in.InitiatedBy,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", scan.ID).
		Str("clientId", scan.ClientID).
		Str("scanType", scan.ScanType).
		Msg("Scan scheduled")

	return scan, nil
}

// List retrieves scans matching the given options
func (s *ScanService) List(opts store.ScanListOptions) ([]*models.SecurityScan, error) {
	if opts.Status != "" {
		if _, err := models.ParseScanStatus(opts.Status); err != nil {
			return nil, err
		}
	}
	return s.store.ListScans(opts)
}

// GetByID retrieves a single scan
func (s *ScanService) GetByID(id string) (*models.SecurityScan, error) {
	return s.store.GetScan(id)
}

// StartScan transitions a scheduled scan to in_progress
func (s *ScanService) StartScan(id string) (*models.SecurityScan, error) {
	scan, err := s.store.GetScan(id)
	if err != nil {
		return nil, err
	}

	if scan.Status != models.ScanStatusScheduled {
		return nil, fmt.Errorf("%w: cannot start scan in status %q", ErrInvalidTransition, scan.Status)
	}

	status := models.ScanStatusInProgress
	updated, err := s.store.UpdateScan(id, store.ScanPatch{Status: &status})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("Scan started")

	return updated, nil
}

// CompleteScan transitions an in_progress scan to completed, recording the
// finding count and the end time.
func (s *ScanService) CompleteScan(id string, findings int) (*models.SecurityScan, error) {
	scan, err := s.store.GetScan(id)
	if err != nil {
		return nil, err
	}

	if scan.Status != models.ScanStatusInProgress {
		return nil, fmt.Errorf("%w: cannot complete scan in status %q", ErrInvalidTransition, scan.Status)
	}

	status := models.ScanStatusCompleted
	now := time.Now()
	updated, err := s.store.UpdateScan(id, store.ScanPatch{
		Status:   &status,
		EndTime:  &now,
		Findings: &findings,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Int("findings", findings).Msg("Scan completed")

	return updated, nil
}

// FailScan transitions an in_progress scan to failed and records the end time
func (s *ScanService) FailScan(id string) (*models.SecurityScan, error) {
	scan, err := s.store.GetScan(id)
	if err != nil {
		return nil, err
	}

	if scan.Status != models.ScanStatusInProgress {
		return nil, fmt.Errorf("%w: cannot fail scan in status %q", ErrInvalidTransition, scan.Status)
	}

	status := models.ScanStatusFailed
	now := time.Now()
	updated, err := s.store.UpdateScan(id, store.ScanPatch{
		Status:  &status,
		EndTime: &now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn().Str("id", id).Msg("Scan failed")

	return updated, nil
}

// Update applies a merge patch to a scan without lifecycle enforcement.
// Lifecycle changes should go through StartScan/CompleteScan/FailScan.
func (s *ScanService) Update(id string, patch store.ScanPatch) (*models.SecurityScan, error) {
	if patch.Status != nil {
		if _, err := models.ParseScanStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateScan(id, patch)
}

// Delete removes a scan and returns the deleted record
func (s *ScanService) Delete(id string) (*models.SecurityScan, error) {
	scan, err := s.store.DeleteScan(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("Scan deleted")

	return scan, nil
}

// Statistics aggregates scans by status and type and sums findings,
// optionally scoped to one client.
func (s *ScanService) Statistics(clientID string) (*models.ScanStats, error) {
	scans, err := s.store.ListScans(store.ScanListOptions{ClientID: clientID})
	if err != nil {
		return nil, err
	}

	stats := &models.ScanStats{
		TotalScans: len(scans),
		ByStatus:   make(map[string]int),
		ByScanType: make(map[string]int),
	}

	for _, scan := range scans {
		stats.TotalFindings += scan.Findings
		stats.ByStatus[string(scan.Status)]++
		stats.ByScanType[scan.ScanType]++
	}

	return stats, nil
}
