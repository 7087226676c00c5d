package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentinel-console/internal/models"
)

var threatSortColumns = map[string]string{
	"threatType":   "threat_type",
	"severity":     "severity",
	"status":       "status",
	"detectedDate": "detected_date",
	"lastUpdated":  "last_updated",
}

// ThreatListOptions filters and orders threat queries
type ThreatListOptions struct {
	ClientID       string
	Severity       string
	Status         string
	DetectedAfter  time.Time
	DetectedBefore time.Time
	SortBy         string
	SortDir        SortDirection
	Limit          int
}

// ThreatPatch holds the optional fields of a threat update.
// LastUpdated is always refreshed by the service layer.
type ThreatPatch struct {
	ThreatType       *string
	Severity         *models.ThreatSeverity
	Status           *models.ThreatStatus
	AffectedSystems  *[]string
	Description      *string
	RemediationSteps *string
	LastUpdated      *time.Time
}

func scanThreat(row rowScanner) (*models.Threat, error) {
	var threat models.Threat
	var affectedSystems string
	var description, remediation sql.NullString

	err := row.Scan(
		&threat.ID,
		&threat.ClientID,
		&threat.ThreatType,
		&threat.Severity,
		&threat.Status,
		&threat.DetectedDate,
		&threat.LastUpdated,
		&affectedSystems,
		&description,
		&remediation,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(affectedSystems), &threat.AffectedSystems); err != nil {
		return nil, fmt.Errorf("failed to decode affected systems: %w", err)
	}
	threat.Description = description.String
	threat.RemediationSteps = remediation.String

	return &threat, nil
}

func encodeAffectedSystems(systems []string) (string, error) {
	if systems == nil {
		systems = []string{}
	}
	data, err := json.Marshal(systems)
	if err != nil {
		return "", fmt.Errorf("failed to encode affected systems: %w", err)
	}
	return string(data), nil
}

// CreateThreat persists a new threat and returns the stored record
func (s *Store) CreateThreat(threat *models.Threat) (*models.Threat, error) {
	if threat.ID == "" {
		threat.ID = uuid.NewString()
	}

	affected, err := encodeAffectedSystems(threat.AffectedSystems)
	if err != nil {
		return nil, dataErr("createThreat", err)
	}

	_, err = s.Exec(
		`INSERT INTO threats (id, client_id, threat_type, severity, status, detected_date, last_updated, affected_systems, description, remediation_steps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		threat.ID, threat.ClientID, threat.ThreatType, threat.Severity, threat.Status,
		threat.DetectedDate, threat.LastUpdated, affected,
		nullString(threat.Description), nullString(threat.RemediationSteps),
	)
	if err != nil {
		return nil, dataErr("createThreat", err)
	}

	return s.GetThreat(threat.ID)
}

// GetThreat retrieves a threat by id
func (s *Store) GetThreat(id string) (*models.Threat, error) {
	threat, err := scanThreat(s.QueryRow(
		`SELECT id, client_id, threat_type, severity, status, detected_date, last_updated, affected_systems, description, remediation_steps
		 FROM threats WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getThreat", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getThreat", err)
	}
	return threat, nil
}

// ListThreats retrieves threats matching the given options
func (s *Store) ListThreats(opts ThreatListOptions) ([]*models.Threat, error) {
	query := `SELECT id, client_id, threat_type, severity, status, detected_date, last_updated, affected_systems, description, remediation_steps FROM threats`
	var args []any
	var conditions []string

	if opts.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, opts.ClientID)
	}
	if opts.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, opts.Severity)
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, opts.Status)
	}
	if !opts.DetectedAfter.IsZero() {
		conditions = append(conditions, "detected_date > ?")
		args = append(args, opts.DetectedAfter)
	}
	if !opts.DetectedBefore.IsZero() {
		conditions = append(conditions, "detected_date < ?")
		args = append(args, opts.DetectedBefore)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += sortClause(threatSortColumns, opts.SortBy, "detected_date", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listThreats", err)
	}
	defer rows.Close()

	var threats []*models.Threat
	for rows.Next() {
		threat, err := scanThreat(rows)
		if err != nil {
			return nil, dataErr("listThreats", fmt.Errorf("failed to scan threat row: %w", err))
		}
		threats = append(threats, threat)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listThreats", err)
	}

	return threats, nil
}

// UpdateThreat applies a merge patch to a threat and returns the updated record
func (s *Store) UpdateThreat(id string, patch ThreatPatch) (*models.Threat, error) {
	s.Lock()
	defer s.Unlock()

	threat, err := s.GetThreat(id)
	if err != nil {
		return nil, err
	}

	if patch.ThreatType != nil {
		threat.ThreatType = *patch.ThreatType
	}
	if patch.Severity != nil {
		threat.Severity = *patch.Severity
	}
	if patch.Status != nil {
		threat.Status = *patch.Status
	}
	if patch.AffectedSystems != nil {
		threat.AffectedSystems = *patch.AffectedSystems
	}
	if patch.Description != nil {
		threat.Description = *patch.Description
	}
	if patch.RemediationSteps != nil {
		threat.RemediationSteps = *patch.RemediationSteps
	}
	if patch.LastUpdated != nil {
		threat.LastUpdated = *patch.LastUpdated
	}

	affected, err := encodeAffectedSystems(threat.AffectedSystems)
	if err != nil {
		return nil, dataErr("updateThreat", err)
	}

	_, err = s.Exec(
		`UPDATE threats SET threat_type = ?, severity = ?, status = ?, last_updated = ?,
		 affected_systems = ?, description = ?, remediation_steps = ?
		 WHERE id = ?`,
		threat.ThreatType, threat.Severity, threat.Status, threat.LastUpdated,
		affected, nullString(threat.Description), nullString(threat.RemediationSteps),
		id,
	)
	if err != nil {
		return nil, dataErr("updateThreat", err)
	}

	return threat, nil
}

// DeleteThreat removes a threat and returns the deleted record
func (s *Store) DeleteThreat(id string) (*models.Threat, error) {
	threat, err := s.GetThreat(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM threats WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteThreat", err)
	}

	return threat, nil
}
