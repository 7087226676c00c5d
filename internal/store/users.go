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

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

var userSortColumns = map[string]string{
	"username":  "username",
	"email":     "email",
	"userType":  "user_type",
	"lastLogin": "last_login",
}

// UserListOptions filters and orders user queries
type UserListOptions struct {
	UserType string
	IsActive *bool
	SortBy   string
	SortDir  SortDirection
	Limit    int
}

// UserPatch holds the optional fields of a user update
type UserPatch struct {
	Username     *string
	Email        *string
	FirstName    *string
	LastName     *string
	UserType     *models.UserType
	IsActive     *bool
	LastLogin    *time.Time
	ProfileImage *string
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	var profileImage sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.UserType,
		&user.IsActive,
		&lastLogin,
		&profileImage,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	user.ProfileImage = profileImage.String

	return &user, nil
}

// CreateUser persists a new user and returns the stored record
func (s *Store) CreateUser(user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	_, err := s.Exec(
		`INSERT INTO users (id, username, email, first_name, last_name, user_type, is_active, last_login, profile_image)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.UserType, user.IsActive, user.LastLogin, nullString(user.ProfileImage),
	)
	if err != nil {
		return nil, dataErr("createUser", err)
	}

	return s.GetUser(user.ID)
}

// GetUser retrieves a user by id
func (s *Store) GetUser(id string) (*models.User, error) {
	user, err := scanUser(s.QueryRow(
		`SELECT id, username, email, first_name, last_name, user_type, is_active, last_login, profile_image
		 FROM users WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataErr("getUser", ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("getUser", err)
	}
	return user, nil
}

// ListUsers retrieves users matching the given options
func (s *Store) ListUsers(opts UserListOptions) ([]*models.User, error) {
	query := `SELECT id, username, email, first_name, last_name, user_type, is_active, last_login, profile_image FROM users`
	var args []any
	var conditions []string

	if opts.UserType != "" {
		conditions = append(conditions, "user_type = ?")
		args = append(args, opts.UserType)
	}
	if opts.IsActive != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *opts.IsActive)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += sortClause(userSortColumns, opts.SortBy, "username", opts.SortDir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, dataErr("listUsers", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, dataErr("listUsers", fmt.Errorf("failed to scan user row: %w", err))
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, dataErr("listUsers", err)
	}

	return users, nil
}

// UpdateUser applies a merge patch to a user and returns the updated record
func (s *Store) UpdateUser(id string, patch UserPatch) (*models.User, error) {
	s.Lock()
	defer s.Unlock()

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.UserType != nil {
		user.UserType = *patch.UserType
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.LastLogin != nil {
		user.LastLogin = patch.LastLogin
	}
	if patch.ProfileImage != nil {
		user.ProfileImage = *patch.ProfileImage
	}

	_, err = s.Exec(
		`UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?,
		 user_type = ?, is_active = ?, last_login = ?, profile_image = ?
		 WHERE id = ?`,
		user.Username, user.Email, user.FirstName, user.LastName,
		user.UserType, user.IsActive, user.LastLogin, nullString(user.ProfileImage),
		id,
	)
	if err != nil {
		return nil, dataErr("updateUser", err)
	}

	return user, nil
}

// DeleteUser removes a user and returns the deleted record
func (s *Store) DeleteUser(id string) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		return nil, dataErr("deleteUser", err)
	}

	return user, nil
}

// nullString converts an empty string to a SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
