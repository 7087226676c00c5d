// Package store provides the data access layer for the Sentinel Console.
// It wraps a SQLite database and exposes list/get/create/update/delete
// operations per model, translating underlying failures into typed errors
// carrying the failing operation's name.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotFound indicates that no record matched the requested id
var ErrNotFound = errors.New("record not found")

// DataError wraps a failure from the underlying database, labeled with the
// operation that produced it.
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// dataErr builds a DataError for the given operation
func dataErr(op string, err error) error {
	return &DataError{Op: op, Err: err}
}

// SortDirection orders list results
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Store represents the database connection
type Store struct {
	*sql.DB
	Path   string // Exported for integration tests
	logger *zerolog.Logger
	sync.Mutex
}

// New creates a new store backed by the SQLite database at path
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	logger := log.With().Str("component", "store").Logger()

	s := &Store{
		DB:     db,
		Path:   path,
		logger: &logger,
	}

	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.optimize(); err != nil {
		logger.Warn().Err(err).Msg("Failed to set some database optimization parameters")
	}

	return s, nil
}

func (s *Store) initializeSchema() error {
	s.logger.Info().Msg("Initializing database schema")

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		user_type TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMP,
		profile_image TEXT
	);

	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		contact_person TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		industry TEXT,
		size TEXT NOT NULL,
		status TEXT NOT NULL,
		registration_date TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS threats (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		threat_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		detected_date TIMESTAMP NOT NULL,
		last_updated TIMESTAMP NOT NULL,
		affected_systems TEXT NOT NULL DEFAULT '[]',
		description TEXT,
		remediation_steps TEXT,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS systems (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		name TEXT NOT NULL,
		system_type TEXT NOT NULL,
		ip_address TEXT,
		mac_address TEXT,
		operating_system TEXT,
		last_scan_date TIMESTAMP,
		security_score REAL NOT NULL DEFAULT 100,
		vulnerabilities INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS security_scans (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		scan_type TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP,
		status TEXT NOT NULL,
		findings INTEGER NOT NULL DEFAULT 0,
		systems_covered INTEGER NOT NULL DEFAULT 0,
		initiated_by TEXT NOT NULL,
		report_id TEXT,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS security_metrics (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		previous_value REAL,
		change_percentage REAL,
		category TEXT NOT NULL,
		last_updated TIMESTAMP NOT NULL,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metric_history (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		value REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assessment_reports (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		title TEXT NOT NULL,
		report_type TEXT NOT NULL,
		status TEXT NOT NULL,
		created_date TIMESTAMP NOT NULL,
		summary TEXT,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		details TEXT,
		ip_address TEXT,
		user_agent TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_threats_client_id ON threats(client_id);
	CREATE INDEX IF NOT EXISTS idx_threats_severity ON threats(severity);
	CREATE INDEX IF NOT EXISTS idx_systems_client_id ON systems(client_id);
	CREATE INDEX IF NOT EXISTS idx_scans_client_id ON security_scans(client_id);
	CREATE INDEX IF NOT EXISTS idx_scans_start_time ON security_scans(start_time);
	CREATE INDEX IF NOT EXISTS idx_metrics_client_id ON security_metrics(client_id);
	CREATE INDEX IF NOT EXISTS idx_metric_history_lookup ON metric_history(client_id, metric_name, timestamp);
	CREATE INDEX IF NOT EXISTS idx_reports_client_id ON assessment_reports(client_id);
	CREATE INDEX IF NOT EXISTS idx_activity_logs_user ON activity_logs(user_id);
	CREATE INDEX IF NOT EXISTS idx_activity_logs_action ON activity_logs(action);
	CREATE INDEX IF NOT EXISTS idx_activity_logs_timestamp ON activity_logs(timestamp);
	`

	if _, err := s.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return nil
}

// optimize sets SQLite optimization parameters
func (s *Store) optimize() error {
	// Enable WAL mode for better concurrency
	if _, err := s.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return err
	}

	if _, err := s.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return err
	}

	if _, err := s.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return err
	}

	if _, err := s.Exec("PRAGMA cache_size=-20000"); err != nil { // Approx 20MB cache
		s.logger.Warn().Err(err).Msg("Failed to set cache_size PRAGMA")
	}

	// Avoid "database is locked" errors under concurrent requests
	if _, err := s.Exec("PRAGMA busy_timeout=10000"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set busy_timeout PRAGMA")
	}

	return nil
}

// Optimize performs database maintenance operations
func (s *Store) Optimize() error {
	s.Lock()
	defer s.Unlock()

	s.logger.Info().Msg("Optimizing database")

	if _, err := s.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	if _, err := s.Exec("REINDEX"); err != nil {
		return fmt.Errorf("failed to reindex database: %w", err)
	}

	if _, err := s.Exec("ANALYZE"); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}

	// PRAGMA settings may reset after VACUUM
	if err := s.optimize(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reset optimization parameters after vacuum")
	}

	return nil
}

// Backup creates a consistent backup of the database in backupDir and
// returns its path. An empty backupDir falls back to a backups directory
// beside the database file.
func (s *Store) Backup(backupDir string) (string, error) {
	s.Lock()
	defer s.Unlock()

	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(s.Path), "backups")
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	baseFilename := filepath.Base(s.Path)
	extIdx := strings.LastIndex(baseFilename, ".")
	var backupFilename string
	if extIdx > 0 {
		backupFilename = fmt.Sprintf("%s_%s%s", baseFilename[:extIdx], timestamp, baseFilename[extIdx:])
	} else {
		backupFilename = fmt.Sprintf("%s_%s", baseFilename, timestamp)
	}
	backupPath := filepath.Join(backupDir, backupFilename)

	// Checkpoint the WAL first so all changes are in the main DB file
	if _, err := s.Exec("PRAGMA wal_checkpoint(FULL)"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to checkpoint WAL before backup")
	}

	if _, err := s.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	s.logger.Info().Str("path", backupPath).Msg("Database backup created")

	return backupPath, nil
}

// Stats returns record counts per table plus the database file size
func (s *Store) Stats() (map[string]any, error) {
	stats := make(map[string]any)

	tables := map[string]string{
		"userCount":   "users",
		"clientCount": "clients",
		"threatCount": "threats",
		"systemCount": "systems",
		"scanCount":   "security_scans",
		"metricCount": "security_metrics",
		"reportCount": "assessment_reports",
		"logCount":    "activity_logs",
	}
	for key, table := range tables {
		var count int
		if err := s.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[key] = count
	}

	if info, err := os.Stat(s.Path); err == nil {
		stats["sizeBytes"] = info.Size()
	} else {
		stats["sizeBytes"] = int64(0)
	}

	return stats, nil
}

// sortClause builds an ORDER BY clause from a whitelist of sortable columns.
// Unknown fields fall back to the default column.
func sortClause(columns map[string]string, field, defaultColumn string, dir SortDirection) string {
	column, ok := columns[field]
	if !ok {
		column = defaultColumn
	}
	direction := "ASC"
	if dir == SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}
