package service

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// SystemService manages protected client assets
type SystemService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewSystemService creates a new system service
func NewSystemService(s *store.Store) *SystemService {
	return &SystemService{
		store:  s,
		logger: log.With().Str("component", "system_service").Logger(),
	}
}

// CreateSystemInput holds the caller-supplied fields of a new system
type CreateSystemInput struct {
	ClientID        string   `json:"clientId"`
	Name            string   `json:"name"`
	SystemType      string   `json:"systemType"`
	IPAddress       string   `json:"ipAddress"`
	MACAddress      string   `json:"macAddress"`
	OperatingSystem string   `json:"operatingSystem"`
	SecurityScore   *float64 `json:"securityScore"`
}

// Create registers a new protected system. New systems start protected with
// a security score of 100 and zero known vulnerabilities.
func (s *SystemService) Create(in CreateSystemInput) (*models.System, error) {
	if in.ClientID == "" {
		return nil, requiredErr("clientId")
	}
	if in.Name == "" {
		return nil, requiredErr("name")
	}
	if in.SystemType == "" {
		return nil, requiredErr("systemType")
	}

	score := 100.0
	if in.SecurityScore != nil {
		if err := validateScore(*in.SecurityScore); err != nil {
			return nil, err
		}
		score = *in.SecurityScore
	}

	system, err := s.store.CreateSystem(&models.System{
		ClientID:        in.ClientID,
		Name:            in.Name,
		SystemType:      in.SystemType,
		IPAddress:       in.IPAddress,
		MACAddress:      in.MACAddress,
		OperatingSystem: in.OperatingSystem,
		SecurityScore:   score,
		Vulnerabilities: 0,
		Status:          models.SystemStatusProtected,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", system.ID).
		Str("clientId", system.ClientID).
		Str("name", system.Name).
		Msg("System registered")

	return system, nil
}

// List retrieves systems matching the given options
func (s *SystemService) List(opts store.SystemListOptions) ([]*models.System, error) {
	if opts.Status != "" {
		if _, err := models.ParseSystemStatus(opts.Status); err != nil {
			return nil, err
		}
	}
	return s.store.ListSystems(opts)
}

// GetByID retrieves a single system
func (s *SystemService) GetByID(id string) (*models.System, error) {
	return s.store.GetSystem(id)
}

// Update applies a merge patch to a system
func (s *SystemService) Update(id string, patch store.SystemPatch) (*models.System, error) {
	if patch.Status != nil {
		if _, err := models.ParseSystemStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
	}
	if patch.SecurityScore != nil {
		if err := validateScore(*patch.SecurityScore); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateSystem(id, patch)
}

// Delete removes a system and returns the deleted record
func (s *SystemService) Delete(id string) (*models.System, error) {
	system, err := s.store.DeleteSystem(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("System deleted")

	return system, nil
}

// Statistics aggregates systems, optionally scoped to one client. The average
// security score of an empty set is 0, not NaN.
func (s *SystemService) Statistics(clientID string) (*models.SystemStats, error) {
	systems, err := s.store.ListSystems(store.SystemListOptions{ClientID: clientID})
	if err != nil {
		return nil, err
	}

	stats := &models.SystemStats{
		TotalSystems: len(systems),
		ByStatus:     make(map[string]int),
	}

	var scoreSum float64
	for _, system := range systems {
		scoreSum += system.SecurityScore
		stats.TotalVulnerabilities += system.Vulnerabilities
		stats.ByStatus[string(system.Status)]++
	}

	if len(systems) > 0 {
		stats.AverageSecurityScore = scoreSum / float64(len(systems))
	}

	return stats, nil
}

func validateScore(score float64) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: securityScore must be between 0 and 100, got %g", ErrValidation, score)
	}
	return nil
}
