package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

func TestClientCreateDefaults(t *testing.T) {
	svc := NewClientService(newTestStore(t))

	client, err := svc.Create(CreateClientInput{
		Name:          "Acme Corp",
		ContactPerson: "Jordan Reyes",
		Email:         "jordan@acme.example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, client.ID)
	assert.Equal(t, models.ClientStatusActive, client.Status)
	assert.Equal(t, models.ClientSizeSmall, client.Size)
	assert.False(t, client.RegistrationDate.IsZero())
}

func TestClientCreateRequiredFields(t *testing.T) {
	svc := NewClientService(newTestStore(t))

	cases := []struct {
		name  string
		input CreateClientInput
	}{
		{"missing name", CreateClientInput{ContactPerson: "P", Email: "e@x.com"}},
		{"missing contactPerson", CreateClientInput{Name: "N", Email: "e@x.com"}},
		{"missing email", CreateClientInput{Name: "N", ContactPerson: "P"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestClientCreateInvalidEnum(t *testing.T) {
	svc := NewClientService(newTestStore(t))

	_, err := svc.Create(CreateClientInput{
		Name:          "Acme Corp",
		ContactPerson: "Jordan Reyes",
		Email:         "jordan@acme.example.com",
		Size:          "gigantic",
	})
	require.Error(t, err)

	var enumErr *models.InvalidEnumError
	assert.True(t, errors.As(err, &enumErr))
	assert.Equal(t, "size", enumErr.Field)
}

func TestClientUpdateNotFound(t *testing.T) {
	svc := NewClientService(newTestStore(t))

	name := "Renamed"
	_, err := svc.Update("no-such-id", store.ClientPatch{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientStatistics(t *testing.T) {
	s := newTestStore(t)
	svc := NewClientService(s)

	inputs := []CreateClientInput{
		{Name: "A", ContactPerson: "P", Email: "a@x.com", Size: "small", Industry: "finance"},
		{Name: "B", ContactPerson: "P", Email: "b@x.com", Size: "large", Industry: "finance"},
		{Name: "C", ContactPerson: "P", Email: "c@x.com", Size: "small", Status: "inactive"},
	}
	for _, in := range inputs {
		_, err := svc.Create(in)
		require.NoError(t, err)
	}

	stats, err := svc.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalClients)
	assert.Equal(t, 2, stats.ByStatus["active"])
	assert.Equal(t, 1, stats.ByStatus["inactive"])
	assert.Equal(t, 2, stats.BySize["small"])
	assert.Equal(t, 2, stats.ByIndustry["finance"])
	// Empty industries are not counted as a bucket
	assert.NotContains(t, stats.ByIndustry, "")

	// Status buckets sum to the total
	sum := 0
	for _, n := range stats.ByStatus {
		sum += n
	}
	assert.Equal(t, stats.TotalClients, sum)
}

func TestClientStatisticsEmpty(t *testing.T) {
	svc := NewClientService(newTestStore(t))

	stats, err := svc.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalClients)
	assert.Empty(t, stats.ByStatus)
	assert.Empty(t, stats.BySize)
	assert.Empty(t, stats.ByIndustry)
}
