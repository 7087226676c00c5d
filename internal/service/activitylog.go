package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// defaultStatsWindowDays is the trailing window used by Statistics when the
// caller does not supply one.
const defaultStatsWindowDays = 30

// dayFormat keys the per-day activity buckets
const dayFormat = "2006-01-02"

// ActivityLogService maintains the append-only audit trail
type ActivityLogService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(s *store.Store) *ActivityLogService {
	return &ActivityLogService{
		store:  s,
		logger: log.With().Str("component", "activity_log_service").Logger(),
	}
}

// CreateLogInput holds the fields of a new audit entry
type CreateLogInput struct {
	UserID    string `json:"userId"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

// CreateLog appends an entry to the audit trail. The timestamp is set at
// write time; entries are never deduplicated.
func (s *ActivityLogService) CreateLog(in CreateLogInput) (*models.ActivityLog, error) {
	if in.UserID == "" {
		return nil, requiredErr("userId")
	}
	if in.Action == "" {
		return nil, requiredErr("action")
	}

	return s.store.CreateActivityLog(&models.ActivityLog{
		UserID:    in.UserID,
		Action:    in.Action,
		Timestamp: time.Now(),
		Details:   in.Details,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	})
}

// ListAll retrieves the most recent audit entries, newest first
func (s *ActivityLogService) ListAll(limit int) ([]*models.ActivityLog, error) {
	return s.store.ListActivityLogs(store.ActivityLogListOptions{Limit: limit})
}

// ByUser retrieves the most recent audit entries for one actor
func (s *ActivityLogService) ByUser(userID string, limit int) ([]*models.ActivityLog, error) {
	if userID == "" {
		return nil, requiredErr("userId")
	}
	return s.store.ListActivityLogs(store.ActivityLogListOptions{UserID: userID, Limit: limit})
}

// ByAction retrieves the most recent audit entries for one action code
func (s *ActivityLogService) ByAction(action string, limit int) ([]*models.ActivityLog, error) {
	if action == "" {
		return nil, requiredErr("action")
	}
	return s.store.ListActivityLogs(store.ActivityLogListOptions{Action: action, Limit: limit})
}

// ByDateRange retrieves audit entries between from and to, newest first
func (s *ActivityLogService) ByDateRange(from, to time.Time, limit int) ([]*models.ActivityLog, error) {
	return s.store.ListActivityLogs(store.ActivityLogListOptions{After: from, Before: to, Limit: limit})
}

// DeleteOlderThan removes audit entries older than the cutoff one at a time.
// Partial failure is explicit: the result carries the count of confirmed
// deletions plus a message per entry that could not be removed.
func (s *ActivityLogService) DeleteOlderThan(cutoff time.Time) (*models.PurgeResult, error) {
	entries, err := s.store.ListActivityLogs(store.ActivityLogListOptions{Before: cutoff})
	if err != nil {
		return nil, err
	}

	result := &models.PurgeResult{}
	for _, entry := range entries {
		if _, err := s.store.DeleteActivityLog(entry.ID); err != nil {
			s.logger.Error().Err(err).Str("id", entry.ID).Msg("Failed to delete audit entry")
			result.Failures = append(result.Failures, entry.ID+": "+err.Error())
			continue
		}
		result.DeletedCount++
	}

	s.logger.Info().
		Int("deleted", result.DeletedCount).
		Int("failed", len(result.Failures)).
		Time("cutoff", cutoff).
		Msg("Purged old audit entries")

	return result, nil
}

// Statistics aggregates audit activity over a trailing window of days
// (default 30). Every calendar day in the window is pre-seeded with a zero
// count before accumulation, so sparse activity still charts cleanly.
func (s *ActivityLogService) Statistics(days int) (*models.ActivityStats, error) {
	if days <= 0 {
		days = defaultStatsWindowDays
	}

	// The window opens at local midnight of the earliest day so that every
	// entry falls into one of the pre-seeded buckets.
	now := time.Now()
	first := now.AddDate(0, 0, -(days - 1))
	windowStart := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())

	entries, err := s.store.ListActivityLogs(store.ActivityLogListOptions{
		After: windowStart.Add(-time.Nanosecond),
	})
	if err != nil {
		return nil, err
	}

	stats := &models.ActivityStats{
		TotalEntries: len(entries),
		ByAction:     make(map[string]int),
		ByUser:       make(map[string]int),
		ByDay:        make(map[string]int),
	}

	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i).Format(dayFormat)
		stats.ByDay[day] = 0
	}

	for _, entry := range entries {
		stats.ByAction[entry.Action]++
		stats.ByUser[entry.UserID]++
		stats.ByDay[entry.Timestamp.Format(dayFormat)]++
	}

	return stats, nil
}
