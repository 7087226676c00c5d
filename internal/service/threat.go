package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// ThreatService manages detected security threats
type ThreatService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewThreatService creates a new threat service
func NewThreatService(s *store.Store) *ThreatService {
	return &ThreatService{
		store:  s,
		logger: log.With().Str("component", "threat_service").Logger(),
	}
}

// CreateThreatInput holds the caller-supplied fields of a new threat
type CreateThreatInput struct {
	ClientID         string   `json:"clientId"`
	ThreatType       string   `json:"threatType"`
	Severity         string   `json:"severity"`
	Status           string   `json:"status"`
	AffectedSystems  []string `json:"affectedSystems"`
	Description      string   `json:"description"`
	RemediationSteps string   `json:"remediationSteps"`
}

// Create records a new threat. Status defaults to active; detectedDate and
// lastUpdated are set to the creation time.
func (s *ThreatService) Create(in CreateThreatInput) (*models.Threat, error) {
	if in.ClientID == "" {
		return nil, requiredErr("clientId")
	}
	if in.ThreatType == "" {
		return nil, requiredErr("threatType")
	}

	severity, err := models.ParseThreatSeverity(in.Severity)
	if err != nil {
		return nil, err
	}

	status := models.ThreatStatusActive
	if in.Status != "" {
		parsed, err := models.ParseThreatStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	now := time.Now()
	threat, err := s.store.CreateThreat(&models.Threat{
		ClientID:         in.ClientID,
		ThreatType:       in.ThreatType,
		Severity:         severity,
		Status:           status,
		DetectedDate:     now,
		LastUpdated:      now,
		AffectedSystems:  in.AffectedSystems,
		Description:      in.Description,
		RemediationSteps: in.RemediationSteps,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", threat.ID).
		Str("clientId", threat.ClientID).
		Str("severity", string(threat.Severity)).
		Msg("Threat recorded")

	return threat, nil
}

// List retrieves threats matching the given options
func (s *ThreatService) List(opts store.ThreatListOptions) ([]*models.Threat, error) {
	if opts.Severity != "" {
		if _, err := models.ParseThreatSeverity(opts.Severity); err != nil {
			return nil, err
		}
	}
	if opts.Status != "" {
		if _, err := models.ParseThreatStatus(opts.Status); err != nil {
			return nil, err
		}
	}
	return s.store.ListThreats(opts)
}

// GetByID retrieves a single threat
func (s *ThreatService) GetByID(id string) (*models.Threat, error) {
	return s.store.GetThreat(id)
}

// Update applies a merge patch to a threat. lastUpdated is always refreshed,
// regardless of caller input.
func (s *ThreatService) Update(id string, patch store.ThreatPatch) (*models.Threat, error) {
	if patch.Severity != nil {
		if _, err := models.ParseThreatSeverity(string(*patch.Severity)); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if _, err := models.ParseThreatStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	patch.LastUpdated = &now

	return s.store.UpdateThreat(id, patch)
}

// Delete removes a threat and returns the deleted record
func (s *ThreatService) Delete(id string) (*models.Threat, error) {
	threat, err := s.store.DeleteThreat(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("Threat deleted")

	return threat, nil
}

// Statistics aggregates threats by severity and status, optionally scoped to
// one client. An empty result set yields all-zero counts.
func (s *ThreatService) Statistics(clientID string) (*models.ThreatStats, error) {
	threats, err := s.store.ListThreats(store.ThreatListOptions{ClientID: clientID})
	if err != nil {
		return nil, err
	}

	stats := &models.ThreatStats{
		TotalThreats: len(threats),
		BySeverity:   make(map[string]int),
		ByStatus:     make(map[string]int),
	}

	for _, threat := range threats {
		stats.BySeverity[string(threat.Severity)]++
		stats.ByStatus[string(threat.Status)]++
		if threat.Status == models.ThreatStatusActive {
			stats.ActiveThreats++
		}
	}

	return stats, nil
}
