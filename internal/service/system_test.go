package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

func TestSystemCreateDefaults(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewSystemService(s)

	system, err := svc.Create(CreateSystemInput{
		ClientID:   client.ID,
		Name:       "web-01",
		SystemType: "server",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SystemStatusProtected, system.Status)
	assert.Equal(t, 100.0, system.SecurityScore)
	assert.Equal(t, 0, system.Vulnerabilities)
}

func TestSystemScoreValidation(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewSystemService(s)

	bad := 120.0
	_, err := svc.Create(CreateSystemInput{
		ClientID:      client.ID,
		Name:          "web-01",
		SystemType:    "server",
		SecurityScore: &bad,
	})
	assert.ErrorIs(t, err, ErrValidation)

	good := 42.5
	system, err := svc.Create(CreateSystemInput{
		ClientID:      client.ID,
		Name:          "web-02",
		SystemType:    "server",
		SecurityScore: &good,
	})
	require.NoError(t, err)
	assert.Equal(t, 42.5, system.SecurityScore)

	negative := -1.0
	_, err = svc.Update(system.ID, store.SystemPatch{SecurityScore: &negative})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSystemStatisticsEmpty(t *testing.T) {
	svc := NewSystemService(newTestStore(t))

	stats, err := svc.Statistics("")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalSystems)
	// Average of an empty set is 0, not NaN
	assert.Equal(t, 0.0, stats.AverageSecurityScore)
	assert.Equal(t, 0, stats.TotalVulnerabilities)
}

func TestSystemStatistics(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewSystemService(s)

	scores := []float64{90, 70}
	for i, score := range scores {
		sc := score
		system, err := svc.Create(CreateSystemInput{
			ClientID:      client.ID,
			Name:          "sys",
			SystemType:    "server",
			SecurityScore: &sc,
		})
		require.NoError(t, err)

		vulns := i * 3
		status := models.SystemStatusAtRisk
		_, err = svc.Update(system.ID, store.SystemPatch{
			Vulnerabilities: &vulns,
			Status:          &status,
		})
		require.NoError(t, err)
	}

	stats, err := svc.Statistics(client.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSystems)
	assert.Equal(t, 80.0, stats.AverageSecurityScore)
	assert.Equal(t, 3, stats.TotalVulnerabilities)
	assert.Equal(t, 2, stats.ByStatus["at_risk"])
}
