package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-console/internal/models"
)

func TestScanCreateDefaults(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewScanService(s)

	scan, err := svc.Create(CreateScanInput{
		ClientID:    client.ID,
		ScanType:    "vulnerability",
		InitiatedBy: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ScanStatusScheduled, scan.Status)
	assert.Equal(t, 0, scan.Findings)
	assert.False(t, scan.StartTime.IsZero())
	assert.Nil(t, scan.EndTime)
}

func TestScanLifecycle(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewScanService(s)

	scan, err := svc.Create(CreateScanInput{ClientID: client.ID, ScanType: "network"})
	require.NoError(t, err)

	started, err := svc.StartScan(scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusInProgress, started.Status)

	completed, err := svc.CompleteScan(scan.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCompleted, completed.Status)
	assert.Equal(t, 7, completed.Findings)
	require.NotNil(t, completed.EndTime)
	assert.False(t, completed.EndTime.IsZero())
}

func TestScanInvalidTransitions(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewScanService(s)

	scan, err := svc.Create(CreateScanInput{ClientID: client.ID, ScanType: "network"})
	require.NoError(t, err)

	// Cannot complete or fail a scan that has not started
	_, err = svc.CompleteScan(scan.ID, 3)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.FailScan(scan.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.StartScan(scan.ID)
	require.NoError(t, err)

	// Cannot start a scan twice
	_, err = svc.StartScan(scan.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.FailScan(scan.ID)
	require.NoError(t, err)

	// Terminal states reject further transitions
	_, err = svc.CompleteScan(scan.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestScanStatistics(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewScanService(s)

	first, err := svc.Create(CreateScanInput{ClientID: client.ID, ScanType: "network"})
	require.NoError(t, err)
	_, err = svc.StartScan(first.ID)
	require.NoError(t, err)
	_, err = svc.CompleteScan(first.ID, 4)
	require.NoError(t, err)

	_, err = svc.Create(CreateScanInput{ClientID: client.ID, ScanType: "compliance"})
	require.NoError(t, err)

	stats, err := svc.Statistics(client.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalScans)
	assert.Equal(t, 4, stats.TotalFindings)
	assert.Equal(t, 1, stats.ByStatus["completed"])
	assert.Equal(t, 1, stats.ByStatus["scheduled"])
	assert.Equal(t, 1, stats.ByScanType["network"])
	assert.Equal(t, 1, stats.ByScanType["compliance"])
}
