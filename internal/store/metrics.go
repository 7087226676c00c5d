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

var metricSortColumns = map[string]string{
	"metricName":  "metric_name",
	"metricValue": "metric_value",
	"category":    "category",
	"lastUpdated": "last_updated",
}

// MetricListOptions filters and orders security metric queries
type MetricListOptions struct {
	ClientID   string
	Category   string
	MetricName string
	SortBy     string
	SortDir    SortDirection
	Limit      int
}

// MetricPatch holds the optional fields of a security metric update.
// LastUpdated is always refreshed by the service layer.
type MetricPatch struct {
	MetricValue      *float64
	PreviousValue    *float64
	ChangePercentage *float64
	Category         *models.MetricCategory
	LastUpdated      *time.Time
}

func scanMetric(row rowScanner) (*models.SecurityMetric, error) {
	var metric models.SecurityMetric
	var previous, change sql.NullFloat64

	err := row.Scan(
		&metric.ID,
		&metric.ClientID,
		&metric.MetricName,
		&metric.MetricValue,
		&previous,
		&change,
		&metric.Category,
		&metric.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if previous.Valid {
		v := previous.Float64
		metric.PreviousValue = &v
	}
	if change.Valid {
		v := change.Float64
		metric.ChangePercentage = &v
	}

	return &metric, nil
}

// CreateMetric persists a new security metric and returns the stored record
func (s *Store) CreateMetric(metric *models.SecurityMetric) (*models.SecurityMetric, error) {
	if metric.ID == "" {
		metric.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO security_metrics (id, client_id, metric_name, metric_value, previous_value, change_percentage, category, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		metric.ID, metric.ClientID, metric.MetricName, metric.MetricValue,
		metric.PreviousValue, metric.ChangePercentage, metric.Category, metric.LastUpdated,
	)
	if err != nil {
		return nil, dataErr("createMetric", err)
	}

	return s.GetMetric(metric.ID)
}

// GetMetric retrieves a security metric by id
func (s *Store) GetMetric(id string) (*models.SecurityMetric, error) {
	metric, err := scanMetric(s.QueryRow(
		`SELECT id, client_id, metric_name, metric_value, previous_value, change_percentage, category, last_updated
		 FROM security_metrics WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getMetric", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getMetric", err)
	}
	return metric, nil
}

// ListMetrics retrieves security metrics matching the given options
func (s *Store) ListMetrics(opts MetricListOptions) ([]*models.SecurityMetric, error) {
	query := `SELECT id, client_id, metric_name, metric_value, previous_value, change_percentage, category, last_updated FROM security_metrics`
	var args []any
	var conditions []string

	if opts.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, opts.ClientID)
	}
	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.MetricName != "" {
		conditions = append(conditions, "metric_name = ?")
		args = append(args, opts.MetricName)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += sortClause(metricSortColumns, opts.SortBy, "metric_name", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listMetrics", err)
	}
	defer rows.Close()

	var metrics []*models.SecurityMetric
	for rows.Next() {
		metric, err := scanMetric(rows)
		if err != nil {
			return nil, dataErr("listMetrics", fmt.Errorf("failed to scan metric row: %w", err))
		}
		metrics = append(metrics, metric)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listMetrics", err)
	}

	return metrics, nil
}

// UpdateMetric applies a merge patch to a security metric and returns the updated record
func (s *Store) UpdateMetric(id string, patch MetricPatch) (*models.SecurityMetric, error) {
	s.Lock()
	defer s.Unlock()

	metric, err := s.GetMetric(id)
	if err != nil {
		return nil, err
	}

	if patch.MetricValue != nil {
		metric.MetricValue = *patch.MetricValue
	}
	if patch.PreviousValue != nil {
		metric.PreviousValue = patch.PreviousValue
	}
	if patch.ChangePercentage != nil {
		metric.ChangePercentage = patch.ChangePercentage
	}
	if patch.Category != nil {
		metric.Category = *patch.Category
	}
	if patch.LastUpdated != nil {
		metric.LastUpdated = *patch.LastUpdated
	}

	_, err = s.Exec(
		`UPDATE security_metrics SET metric_value = ?, previous_value = ?, change_percentage = ?, category = ?, last_updated = ?
		 WHERE id = ?`,
		metric.MetricValue, metric.PreviousValue, metric.ChangePercentage,
		metric.Category, metric.LastUpdated,
		id,
	)
	if err != nil {
		return nil, dataErr("updateMetric", err)
	}

	return metric, nil
}

// DeleteMetric removes a security metric and returns the deleted record
func (s *Store) DeleteMetric(id string) (*models.SecurityMetric, error) {
	metric, err := s.GetMetric(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM security_metrics WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteMetric", err)
	}

	return metric, nil
}

// AppendMetricHistory records a time-series point for a metric
func (s *Store) AppendMetricHistory(entry *models.MetricHistoryEntry) (*models.MetricHistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO metric_history (id, client_id, metric_name, timestamp, value)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.ClientID, entry.MetricName, entry.Timestamp, entry.Value,
	)
	if err != nil {
		return nil, dataErr("appendMetricHistory", err)
	}

	return entry, nil
}

// MetricHistoryRange retrieves history points for a metric within [from, to],
// ordered ascending by timestamp for charting.
func (s *Store) MetricHistoryRange(clientID, metricName string, from, to time.Time) ([]*models.MetricHistoryEntry, error) {
	rows, err := s.Query(
		`SELECT id, client_id, metric_name, timestamp, value
		 FROM metric_history
		 WHERE client_id = ? AND metric_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp ASC`,
		clientID, metricName, from, to,
	)
	if err != nil {
		return nil, dataErr("metricHistoryRange", err)
	}
	defer rows.Close()

	var entries []*models.MetricHistoryEntry
	for rows.Next() {
		var entry models.MetricHistoryEntry
		err := rows.Scan(&entry.ID, &entry.ClientID, &entry.MetricName, &entry.Timestamp, &entry.Value)
		if err != nil {
			return nil, dataErr("metricHistoryRange", fmt.Errorf("failed to scan history row: %w", err))
		}
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("metricHistoryRange", err)
	}

	return entries, nil
}
