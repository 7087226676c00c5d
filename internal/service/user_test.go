package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-console/internal/store"
)

func TestUserCreateDefaults(t *testing.T) {
	svc := NewUserService(newTestStore(t))

	user, err := svc.Create(CreateUserInput{
		Username: "consultant1",
		Email:    "c1@example.com",
		UserType: "consultant",
	})
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.Nil(t, user.LastLogin)
}

func TestUserCreateRequiresValidType(t *testing.T) {
	svc := NewUserService(newTestStore(t))

	_, err := svc.Create(CreateUserInput{
		Username: "x",
		Email:    "x@example.com",
		UserType: "superuser",
	})
	assert.Error(t, err)
}

func TestUserRecordLogin(t *testing.T) {
	svc := NewUserService(newTestStore(t))

	user, err := svc.Create(CreateUserInput{
		Username: "admin1",
		Email:    "a@example.com",
		UserType: "admin",
	})
	require.NoError(t, err)

	updated, err := svc.RecordLogin(user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastLogin)
	assert.False(t, updated.LastLogin.IsZero())
}

func TestUserStatistics(t *testing.T) {
	s := newTestStore(t)
	svc := NewUserService(s)

	types := []string{"admin", "consultant", "consultant"}
	var lastID string
	for i, ut := range types {
		user, err := svc.Create(CreateUserInput{
			Username: "user" + string(rune('a'+i)),
			Email:    "u@example.com",
			UserType: ut,
		})
		require.NoError(t, err)
		lastID = user.ID
	}

	inactive := false
	_, err := svc.Update(lastID, store.UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	stats, err := svc.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.ActiveUsers)
	assert.Equal(t, 2, stats.ByType["consultant"])
	assert.Equal(t, 1, stats.ByType["admin"])
}
