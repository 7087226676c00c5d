package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricCreateRecordsHistory(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewMetricService(s)

	metric, err := svc.Create(CreateMetricInput{
		ClientID:    client.ID,
		MetricName:  "patch_coverage",
		MetricValue: 82.5,
		Category:    "compliance",
	})
	require.NoError(t, err)

	assert.Nil(t, metric.PreviousValue)
	assert.Nil(t, metric.ChangePercentage)

	history, err := svc.History(client.ID, "patch_coverage",
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 82.5, history[0].Value)
}

func TestMetricUpdateValue(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewMetricService(s)

	metric, err := svc.Create(CreateMetricInput{
		ClientID:    client.ID,
		MetricName:  "open_findings",
		MetricValue: 50,
		Category:    "threat",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateValue(metric.ID, 75)
	require.NoError(t, err)

	assert.Equal(t, 75.0, updated.MetricValue)
	require.NotNil(t, updated.PreviousValue)
	assert.Equal(t, 50.0, *updated.PreviousValue)
	require.NotNil(t, updated.ChangePercentage)
	assert.InDelta(t, 50.0, *updated.ChangePercentage, 0.0001)
	assert.True(t, updated.LastUpdated.After(metric.LastUpdated) ||
		updated.LastUpdated.Equal(metric.LastUpdated))

	history, err := svc.History(client.ID, "open_findings",
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMetricUpdateValueFromZero(t *testing.T) {
	s := newTestStore(t)
	client := newTestClient(t, s)
	svc := NewMetricService(s)

	metric, err := svc.Create(CreateMetricInput{
		ClientID:   client.ID,
		MetricName: "incidents",
		Category:   "threat",
	})
	require.NoError(t, err)

	// A zero baseline produces no change percentage instead of dividing by zero
	updated, err := svc.UpdateValue(metric.ID, 10)
	require.NoError(t, err)
	require.NotNil(t, updated.PreviousValue)
	assert.Equal(t, 0.0, *updated.PreviousValue)
	assert.Nil(t, updated.ChangePercentage)
}

func TestMetricHistoryRequiresScope(t *testing.T) {
	svc := NewMetricService(newTestStore(t))

	_, err := svc.History("", "name", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.History("client-1", "", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}
