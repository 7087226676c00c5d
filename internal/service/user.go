package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// UserService manages dashboard user accounts
type UserService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewUserService creates a new user service
func NewUserService(s *store.Store) *UserService {
	return &UserService{
		store:  s,
		logger: log.With().Str("component", "user_service").Logger(),
	}
}

// CreateUserInput holds the caller-supplied fields of a new user
type CreateUserInput struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	UserType     string `json:"userType"`
	ProfileImage string `json:"profileImage"`
}

// Create registers a new user account. New accounts start active.
func (s *UserService) Create(in CreateUserInput) (*models.User, error) {
	if in.Username == "" {
		return nil, requiredErr("username")
	}
	if in.Email == "" {
		return nil, requiredErr("email")
	}

	userType, err := models.ParseUserType(in.UserType)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(&models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		UserType:     userType,
		IsActive:     true,
		ProfileImage: in.ProfileImage,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", user.ID).Str("username", user.Username).Msg("User created")

	return user, nil
}

// List retrieves users matching the given options
func (s *UserService) List(opts store.UserListOptions) ([]*models.User, error) {
	if opts.UserType != "" {
		if _, err := models.ParseUserType(opts.UserType); err != nil {
			return nil, err
		}
	}
	return s.store.ListUsers(opts)
}

// GetByID retrieves a single user
func (s *UserService) GetByID(id string) (*models.User, error) {
	return s.store.GetUser(id)
}

// Update applies a merge patch to a user
func (s *UserService) Update(id string, patch store.UserPatch) (*models.User, error) {
	if patch.UserType != nil {
		if _, err := models.ParseUserType(string(*patch.UserType)); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateUser(id, patch)
}

// RecordLogin stamps a user's lastLogin with the current time
func (s *UserService) RecordLogin(id string) (*models.User, error) {
	now := time.Now()
	return s.store.UpdateUser(id, store.UserPatch{LastLogin: &now})
}

// Delete removes a user and returns the deleted record
func (s *UserService) Delete(id string) (*models.User, error) {
	user, err := s.store.DeleteUser(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("User deleted")

	return user, nil
}

// Statistics aggregates the user population by type
func (s *UserService) Statistics() (*models.UserStats, error) {
	users, err := s.store.ListUsers(store.UserListOptions{})
	if err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		TotalUsers: len(users),
		ByType:     make(map[string]int),
	}

	for _, user := range users {
		stats.ByType[string(user.UserType)]++
		if user.IsActive {
			stats.ActiveUsers++
		}
	}

	return stats, nil
}
