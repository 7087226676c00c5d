package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/models"
	"sentinel-console/internal/store"
)

// ClientService manages business clients
type ClientService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewClientService creates a new client service
func NewClientService(s *store.Store) *ClientService {
	return &ClientService{
		store:  s,
		logger: log.With().Str("component", "client_service").Logger(),
	}
}

// CreateClientInput holds the caller-supplied fields of a new client
type CreateClientInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Industry      string `json:"industry"`
	Size          string `json:"size"`
	Status        string `json:"status"`
}

// Create persists a new client. Status defaults to active and
// registrationDate is set to the creation time.
func (s *ClientService) Create(in CreateClientInput) (*models.Client, error) {
	if in.Name == "" {
		return nil, requiredErr("name")
	}
	if in.ContactPerson == "" {
		return nil, requiredErr("contactPerson")
	}
	if in.Email == "" {
		return nil, requiredErr("email")
	}

	size := models.ClientSizeSmall
	if in.Size != "" {
		parsed, err := models.ParseClientSize(in.Size)
		if err != nil {
			return nil, err
		}
		size = parsed
	}

	status := models.ClientStatusActive
	if in.Status != "" {
		parsed, err := models.ParseClientStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	client, err := s.store.CreateClient(&models.Client{
		Name:             in.Name,
		ContactPerson:    in.ContactPerson,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		Industry:         in.Industry,
		Size:             size,
		Status:           status,
		RegistrationDate: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", client.ID).Str("name", client.Name).Msg("Client created")

	return client, nil
}

// List retrieves clients matching the given options
func (s *ClientService) List(opts store.ClientListOptions) ([]*models.Client, error) {
	if opts.Status != "" {
		if _, err := models.ParseClientStatus(opts.Status); err != nil {
			return nil, err
		}
	}
	if opts.Size != "" {
		if _, err := models.ParseClientSize(opts.Size); err != nil {
			return nil, err
		}
	}
	return s.store.ListClients(opts)
}

// GetByID retrieves a single client
func (s *ClientService) GetByID(id string) (*models.Client, error) {
	return s.store.GetClient(id)
}

// Update applies a merge patch to a client
func (s *ClientService) Update(id string, patch store.ClientPatch) (*models.Client, error) {
	if patch.Size != nil {
		if _, err := models.ParseClientSize(string(*patch.Size)); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if _, err := models.ParseClientStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateClient(id, patch)
}

// Delete removes a client and returns the deleted record
func (s *ClientService) Delete(id string) (*models.Client, error) {
	client, err := s.store.DeleteClient(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("Client deleted")

	return client, nil
}

// Statistics aggregates the client portfolio by status, size, and industry.
// An empty portfolio yields all-zero counts.
func (s *ClientService) Statistics() (*models.ClientStats, error) {
	clients, err := s.store.ListClients(store.ClientListOptions{})
	if err != nil {
		return nil, err
	}

	stats := &models.ClientStats{
		TotalClients: len(clients),
		ByStatus:     make(map[string]int),
		BySize:       make(map[string]int),
		ByIndustry:   make(map[string]int),
	}

	for _, client := range clients {
		stats.ByStatus[string(client.Status)]++
		stats.BySize[string(client.Size)]++
		if client.Industry != "" {
			stats.ByIndustry[client.Industry]++
		}
	}

	return stats, nil
}
