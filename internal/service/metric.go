package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// MetricService manages security metrics and their history
type MetricService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewMetricService creates a new metric service
func NewMetricService(s *store.Store) *MetricService {
	return &MetricService{
		store:  s,
		logger: log.With().Str("component", "metric_service").Logger(),
	}
}

// CreateMetricInput holds the caller-supplied fields of a new metric
type CreateMetricInput struct {
	ClientID    string  `json:"clientId"`
	MetricName  string  `json:"metricName"`
	MetricValue float64 `json:"metricValue"`
	Category    string  `json:"category"`
}

// Create persists a new metric and records its first history point
func (s *MetricService) Create(in CreateMetricInput) (*models.SecurityMetric, error) {
	if in.ClientID == "" {
		return nil, requiredErr("clientId")
	}
	if in.MetricName == "" {
		return nil, requiredErr("metricName")
	}

	category, err := models.ParseMetricCategory(in.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	metric, err := s.store.CreateMetric(&models.SecurityMetric{
		ClientID:    in.ClientID,
		MetricName:  in.MetricName,
		MetricValue: in.MetricValue,
		Category:    category,
		LastUpdated: now,
	})
	if err != nil {
		return nil, err
	}

	s.appendHistory(metric.ClientID, metric.MetricName, now, metric.MetricValue)

	return metric, nil
}

// List retrieves metrics matching the given options
func (s *MetricService) List(opts store.MetricListOptions) ([]*models.SecurityMetric, error) {
	if opts.Category != "" {
		if _, err := models.ParseMetricCategory(opts.Category); err != nil {
			return nil, err
		}
	}
	return s.store.ListMetrics(opts)
}

// GetByID retrieves a single metric
func (s *MetricService) GetByID(id string) (*models.SecurityMetric, error) {
	return s.store.GetMetric(id)
}

// UpdateValue records a new value for a metric. The prior value becomes
// previousValue, changePercentage is recomputed, lastUpdated is refreshed,
// and a history point is appended.
func (s *MetricService) UpdateValue(id string, value float64) (*models.SecurityMetric, error) {
	metric, err := s.store.GetMetric(id)
	if err != nil {
		return nil, err
	}

	previous := metric.MetricValue
	now := time.Now()

	patch := store.MetricPatch{
		MetricValue:   &value,
		PreviousValue: &previous,
		LastUpdated:   &now,
	}
	if previous != 0 {
		change := (value - previous) / previous * 100
		patch.ChangePercentage = &change
	}

	updated, err := s.store.UpdateMetric(id, patch)
	if err != nil {
		return nil, err
	}

	s.appendHistory(updated.ClientID, updated.MetricName, now, value)

	return updated, nil
}

// Update applies a merge patch to a metric. lastUpdated is always refreshed,
// regardless of caller input.
func (s *MetricService) Update(id string, patch store.MetricPatch) (*models.SecurityMetric, error) {
	if patch.Category != nil {
		if _, err := models.ParseMetricCategory(string(*patch.Category)); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	patch.LastUpdated = &now

	return s.store.UpdateMetric(id, patch)
}

// Delete removes a metric and returns the deleted record
func (s *MetricService) Delete(id string) (*models.SecurityMetric, error) {
	return s.store.DeleteMetric(id)
}

// History retrieves the time-series points for a metric within [from, to]
func (s *MetricService) History(clientID, metricName string, from, to time.Time) ([]*models.MetricHistoryEntry, error) {
	if clientID == "" {
		return nil, requiredErr("clientId")
	}
	if metricName == "" {
		return nil, requiredErr("metricName")
	}
	return s.store.MetricHistoryRange(clientID, metricName, from, to)
}

// appendHistory records a history point. History is best effort: a failed
// append is logged but does not fail the metric write.
func (s *MetricService) appendHistory(clientID, metricName string, ts time.Time, value float64) {
	_, err := s.store.AppendMetricHistory(&models.MetricHistoryEntry{
		ClientID:   clientID,
		MetricName: metricName,
		Timestamp:  ts,
		Value:      value,
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("clientId", clientID).
			Str("metric", metricName).
			Msg("Failed to append metric history")
	}
}
