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

var systemSortColumns = map[string]string{
	"name":          "name",
	"systemType":    "system_type",
	"securityScore": "security_score",
	"status":        "status",
	"lastScanDate":  "last_scan_date",
}

// SystemListOptions filters and orders system queries
type SystemListOptions struct {
	ClientID string
	Status   string
	SortBy   string
	SortDir  SortDirection
	Limit    int
}

// SystemPatch holds the optional fields of a system update
type SystemPatch struct {
	Name            *string
	SystemType      *string
	IPAddress       *string
	MACAddress      *string
	OperatingSystem *string
	LastScanDate    *time.Time
	SecurityScore   *float64
	Vulnerabilities *int
	Status          *models.SystemStatus
}

func scanSystem(row rowScanner) (*models.System, error) {
	var system models.System
	var ip, mac, operatingSystem sql.NullString
	var lastScan sql.NullTime

	err := row.Scan(
		&system.ID,
		&system.ClientID,
		&system.Name,
		&system.SystemType,
		&ip,
		&mac,
		&operatingSystem,
		&lastScan,
		&system.SecurityScore,
		&system.Vulnerabilities,
		&system.Status,
	)
	if err != nil {
		return nil, err
	}

	system.IPAddress = ip.String
	system.MACAddress = mac.String
	system.OperatingSystem = operatingSystem.String
	if lastScan.Valid {
		t := lastScan.Time
		system.LastScanDate = &t
	}

	return &system, nil
}

// CreateSystem persists a new protected system and returns the stored record
func (s *Store) CreateSystem(system *models.System) (*models.System, error) {
	if system.ID == "" {
		system.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO systems (id, client_id, name, system_type, ip_address, mac_address, operating_system, last_scan_date, security_score, vulnerabilities, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		system.ID, system.ClientID, system.Name, system.SystemType,
		nullString(system.IPAddress), nullString(system.MACAddress), nullString(system.OperatingSystem),
		system.LastScanDate, system.SecurityScore, system.Vulnerabilities, system.Status,
	)
	if err != nil {
		return nil, dataErr("createSystem", err)
	}

	return s.GetSystem(system.ID)
}

// GetSystem retrieves a system by id
func (s *Store) GetSystem(id string) (*models.System, error) {
	system, err := scanSystem(s.QueryRow(
		`SELECT id, client_id, name, system_type, ip_address, mac_address, operating_system, last_scan_date, security_score, vulnerabilities, status
		 FROM systems WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getSystem", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getSystem", err)
	}
	return system, nil
}

// ListSystems retrieves systems matching the given options
func (s *Store) ListSystems(opts SystemListOptions) ([]*models.System, error) {
	query := `SELECT id, client_id, name, system_type, ip_address, mac_address, operating_system, last_scan_date, security_score, vulnerabilities, status FROM systems`
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

	query += sortClause(systemSortColumns, opts.SortBy, "name", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listSystems", err)
	}
	defer rows.Close()

	var systems []*models.System
	for rows.Next() {
		system, err := scanSystem(rows)
		if err != nil {
			return nil, dataErr("listSystems", fmt.Errorf("failed to scan system row: %w", err))
		}
		systems = append(systems, system)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listSystems", err)
	}

	return systems, nil
}

// UpdateSystem applies a merge patch to a system and returns the updated record
func (s *Store) UpdateSystem(id string, patch SystemPatch) (*models.System, error) {
	s.Lock()
	defer s.Unlock()

	system, err := s.GetSystem(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		system.Name = *patch.Name
	}
	if patch.SystemType != nil {
		system.SystemType = *patch.SystemType
	}
	if patch.IPAddress != nil {
		system.IPAddress = *patch.IPAddress
	}
	if patch.MACAddress != nil {
		system.MACAddress = *patch.MACAddress
	}
	if patch.OperatingSystem != nil {
		system.OperatingSystem = *patch.OperatingSystem
	}
	if patch.LastScanDate != nil {
		system.LastScanDate = patch.LastScanDate
	}
	if patch.SecurityScore != nil {
		system.SecurityScore = *patch.SecurityScore
	}
	if patch.Vulnerabilities != nil {
		system.Vulnerabilities = *patch.Vulnerabilities
	}
	if patch.Status != nil {
		system.Status = *patch.Status
	}

	_, err = s.Exec(
		`UPDATE systems SET name = ?, system_type = ?, ip_address = ?, mac_address = ?,
		 operating_system = ?, last_scan_date = ?, security_score = ?, vulnerabilities = ?, status = ?
		 WHERE id = ?`,
		system.Name, system.SystemType, nullString(system.IPAddress), nullString(system.MACAddress),
		nullString(system.OperatingSystem), system.LastScanDate, system.SecurityScore,
		system.Vulnerabilities, system.Status,
		id,
	)
	if err != nil {
		return nil, dataErr("updateSystem", err)
	}

	return system, nil
}

// DeleteSystem removes a system and returns the deleted record
func (s *Store) DeleteSystem(id string) (*models.System, error) {
	system, err := s.GetSystem(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM systems WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteSystem", err)
	}

	return system, nil
}
