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

// ActivityLogListOptions filters activity log queries. Results are always
// ordered descending by timestamp.
type ActivityLogListOptions struct {
	UserID string
	Action string
	After  time.Time
	Before time.Time
	Limit  int
}

func scanActivityLog(row rowScanner) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	var details, ip, userAgent sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Action,
		&entry.Timestamp,
		&details,
		&ip,
		&userAgent,
	)
	if err != nil {
		return nil, err
	}

	entry.Details = details.String
	entry.IPAddress = ip.String
	entry.UserAgent = userAgent.String

	return &entry, nil
}

// CreateActivityLog appends an entry to the audit trail and returns the stored record
func (s *Store) CreateActivityLog(entry *models.ActivityLog) (*models.ActivityLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO activity_logs (id, user_id, action, timestamp, details, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Action, entry.Timestamp,
		nullString(entry.Details), nullString(entry.IPAddress), nullString(entry.UserAgent),
	)
	if err != nil {
		return nil, dataErr("createActivityLog", err)
	}

	return s.GetActivityLog(entry.ID)
}

// GetActivityLog retrieves an audit entry by id
func (s *Store) GetActivityLog(id string) (*models.ActivityLog, error) {
	entry, err := scanActivityLog(s.QueryRow(
		`SELECT id, user_id, action, timestamp, details, ip_address, user_agent
		 FROM activity_logs WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getActivityLog", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getActivityLog", err)
	}
	return entry, nil
}

// ListActivityLogs retrieves audit entries matching the given options,
// newest first.
func (s *Store) ListActivityLogs(opts ActivityLogListOptions) ([]*models.ActivityLog, error) {
	query := `SELECT id, user_id, action, timestamp, details, ip_address, user_agent FROM activity_logs`
	var args []any
	var conditions []string

	if opts.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, opts.UserID)
	}
	if opts.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, opts.Action)
	}
	if !opts.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, opts.After)
	}
	if !opts.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, opts.Before)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY timestamp DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listActivityLogs", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLog
	for rows.Next() {
		entry, err := scanActivityLog(rows)
		if err != nil {
			return nil, dataErr("listActivityLogs", fmt.Errorf("failed to scan log row: %w", err))
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listActivityLogs", err)
	}

	return entries, nil
}

// DeleteActivityLog removes an audit entry and returns the deleted record
func (s *Store) DeleteActivityLog(id string) (*models.ActivityLog, error) {
	entry, err := s.GetActivityLog(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM activity_logs WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteActivityLog", err)
	}

	return entry, nil
}
