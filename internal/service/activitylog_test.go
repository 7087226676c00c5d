package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-console/internal/models"
)

func TestCreateLogSetsTimestamp(t *testing.T) {
	svc := NewActivityLogService(newTestStore(t))

	entry, err := svc.CreateLog(CreateLogInput{
		UserID: "user-1",
		Action: "TEST_ACTION",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestCreateLogRequiredFields(t *testing.T) {
	svc := NewActivityLogService(newTestStore(t))

	_, err := svc.CreateLog(CreateLogInput{Action: "TEST_ACTION"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateLog(CreateLogInput{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogEntriesAreNotDeduplicated(t *testing.T) {
	svc := NewActivityLogService(newTestStore(t))

	for i := 0; i < 3; i++ {
		_, err := svc.CreateLog(CreateLogInput{UserID: "user-1", Action: "SAME_ACTION"})
		require.NoError(t, err)
	}

	entries, err := svc.ListAll(0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestDeleteOlderThan(t *testing.T) {
	s := newTestStore(t)
	svc := NewActivityLogService(s)

	old := time.Now().AddDate(0, 0, -120)
	for i := 0; i < 2; i++ {
		_, err := s.CreateActivityLog(&models.ActivityLog{
			UserID:    "user-1",
			Action:    "OLD_ACTION",
			Timestamp: old,
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateLog(CreateLogInput{UserID: "user-1", Action: "NEW_ACTION"})
	require.NoError(t, err)

	result, err := svc.DeleteOlderThan(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)

	assert.Equal(t, 2, result.DeletedCount)
	assert.Empty(t, result.Failures)

	remaining, err := svc.ListAll(0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "NEW_ACTION", remaining[0].Action)
}

func TestStatisticsPreSeedsDayBuckets(t *testing.T) {
	s := newTestStore(t)
	svc := NewActivityLogService(s)

	_, err := svc.CreateLog(CreateLogInput{UserID: "user-1", Action: "LOGIN"})
	require.NoError(t, err)
	_, err = s.CreateActivityLog(&models.ActivityLog{
		UserID:    "user-2",
		Action:    "LOGIN",
		Timestamp: time.Now().AddDate(0, 0, -2),
	})
	require.NoError(t, err)

	stats, err := svc.Statistics(7)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 2, stats.ByAction["LOGIN"])
	assert.Equal(t, 1, stats.ByUser["user-1"])
	assert.Equal(t, 1, stats.ByUser["user-2"])

	// Every day in the window appears, even with no activity
	assert.Len(t, stats.ByDay, 7)
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, 1, stats.ByDay[today])
	quiet := time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	assert.Equal(t, 0, stats.ByDay[quiet])
}

func TestStatisticsWindowBoundary(t *testing.T) {
	s := newTestStore(t)
	svc := NewActivityLogService(s)

	first := time.Now().AddDate(0, 0, -6)
	windowStart := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())

	// Just before the window opens: must not be counted
	_, err := s.CreateActivityLog(&models.ActivityLog{
		UserID:    "user-1",
		Action:    "EDGE_ACTION",
		Timestamp: windowStart.Add(-500 * time.Millisecond),
	})
	require.NoError(t, err)
	// Exactly at local midnight of the earliest day: must be counted
	_, err = s.CreateActivityLog(&models.ActivityLog{
		UserID:    "user-1",
		Action:    "EDGE_ACTION",
		Timestamp: windowStart,
	})
	require.NoError(t, err)

	stats, err := svc.Statistics(7)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalEntries)
	assert.Len(t, stats.ByDay, 7, "out-of-window entries must not add buckets")
	assert.Equal(t, 1, stats.ByDay[windowStart.Format(dayFormat)])
}

func TestStatisticsDefaultWindow(t *testing.T) {
	svc := NewActivityLogService(newTestStore(t))

	stats, err := svc.Statistics(0)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalEntries)
	assert.Len(t, stats.ByDay, 30)
}
