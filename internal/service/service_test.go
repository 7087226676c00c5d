package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// newTestStore creates a temporary database for service tests
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sentinel-service-test")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tempDir)
	})

	return s
}

// newTestClient seeds a client record for entities that reference one
func newTestClient(t *testing.T, s *store.Store) *models.Client {
	t.Helper()

	client, err := s.CreateClient(&models.Client{
		Name:             "Test Client",
		ContactPerson:    "Test Person",
		Email:            "test@example.com",
		Size:             models.ClientSizeSmall,
		Status:           models.ClientStatusActive,
		RegistrationDate: time.Now(),
	})
	require.NoError(t, err)

	return client
}
