package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentinel-console/internal/models"
)

var clientSortColumns = map[string]string{
	"name":             "name",
	"industry":         "industry",
	"size":             "size",
	"status":           "status",
	"registrationDate": "registration_date",
}

// ClientListOptions filters and orders client queries
type ClientListOptions struct {
	Status           string
	Size             string
	Industry         string
	RegisteredAfter  time.Time
	RegisteredBefore time.Time
	SortBy           string
	SortDir          SortDirection
	Limit            int
}

// ClientPatch holds the optional fields of a client update
type ClientPatch struct {
	Name          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
	Industry      *string
	Size          *models.ClientSize
	Status        *models.ClientStatus
}

func scanClient(row rowScanner) (*models.Client, error) {
	var client models.Client
	var phone, address, industry sql.NullString

	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.ContactPerson,
		&client.Email,
		&phone,
		&address,
		&industry,
		&client.Size,
		&client.Status,
		&client.RegistrationDate,
	)
	if err != nil {
		return nil, err
	}

	client.Phone = phone.String
	client.Address = address.String
	client.Industry = industry.String

	return &client, nil
}

// CreateClient persists a new client and returns the stored record
func (s *Store) CreateClient(client *models.Client) (*models.Client, error) {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO clients (id, name, contact_person, email, phone, address, industry, size, status, registration_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID, client.Name, client.ContactPerson, client.Email,
		nullString(client.Phone), nullString(client.Address), nullString(client.Industry),
		client.Size, client.Status, client.RegistrationDate,
	)
	if err != nil {
		return nil, dataErr("createClient", err)
	}

	return s.GetClient(client.ID)
}

// GetClient retrieves a client by id
func (s *Store) GetClient(id string) (*models.Client, error) {
	client, err := scanClient(s.QueryRow(
		`SELECT id, name, contact_person, email, phone, address, industry, size, status, registration_date
		 FROM clients WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getClient", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getClient", err)
	}
	return client, nil
}

// ListClients retrieves clients matching the given options
func (s *Store) ListClients(opts ClientListOptions) ([]*models.Client, error) {
	query := `SELECT id, name, contact_person, email, phone, address, industry, size, status, registration_date FROM clients`
	var args []any
	var conditions []string

	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Size != "" {
		conditions = append(conditions, "size = ?")
		args = append(args, opts.Size)
	}
	if opts.Industry != "" {
		conditions = append(conditions, "industry = ?")
		args = append(args, opts.Industry)
	}
	if !opts.RegisteredAfter.IsZero() {
		conditions = append(conditions, "registration_date > ?")
		args = append(args, opts.RegisteredAfter)
	}
	if !opts.RegisteredBefore.IsZero() {
		conditions = append(conditions, "registration_date < ?")
		args = append(args, opts.RegisteredBefore)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += sortClause(clientSortColumns, opts.SortBy, "name", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listClients", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, dataErr("listClients", fmt.Errorf("failed to scan client row: %w", err))
		}
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listClients", err)
	}

	return clients, nil
}

// UpdateClient applies a merge patch to a client and returns the updated record
func (s *Store) UpdateClient(id string, patch ClientPatch) (*models.Client, error) {
	s.Lock()
	defer s.Unlock()

	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		client.Name = *patch.Name
	}
	if patch.ContactPerson != nil {
		client.ContactPerson = *patch.ContactPerson
	}
	if patch.Email != nil {
		client.Email = *patch.Email
	}
	if patch.Phone != nil {
		client.Phone = *patch.Phone
	}
	if patch.Address != nil {
		client.Address = *patch.Address
	}
	if patch.Industry != nil {
		client.Industry = *patch.Industry
	}
	if patch.Size != nil {
		client.Size = *patch.Size
	}
	if patch.Status != nil {
		client.Status = *patch.Status
	}

	_, err = s.Exec(
		`UPDATE clients SET name = ?, contact_person = ?, email = ?, phone = ?,
		 address = ?, industry = ?, size = ?, status = ?
		 WHERE id = ?`,
		client.Name, client.ContactPerson, client.Email, nullString(client.Phone),
		nullString(client.Address), nullString(client.Industry), client.Size, client.Status,
		id,
	)
	if err != nil {
		return nil, dataErr("updateClient", err)
	}

	return client, nil
}

// DeleteClient removes a client and returns the deleted record
func (s *Store) DeleteClient(id string) (*models.Client, error) {
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM clients WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteClient", err)
	}

	return client, nil
}
