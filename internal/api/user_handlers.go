package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

// UserHandler handles user account API endpoints
type UserHandler struct {
	svc   *service.UserService
	audit auditor
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService, logs *service.ActivityLogService) *UserHandler {
	return &UserHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the user routes
func (h *UserHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/users", h.listUsers).Methods("GET")
	r.HandleFunc("/api/users", h.createUser).Methods("POST")
	r.HandleFunc("/api/users/stats", h.getUserStats).Methods("GET")
	r.HandleFunc("/api/users/{id}", h.getUser).Methods("GET")
	r.HandleFunc("/api/users/{id}", h.updateUser).Methods("PUT")
	r.HandleFunc("/api/users/{id}", h.deleteUser).Methods("DELETE")
	r.HandleFunc("/api/users/{id}/login", h.recordLogin).Methods("POST")
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listUsers").Logger()

	opts := store.UserListOptions{
		UserType: r.URL.Query().Get("userType"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  sortDirection(r),
		Limit:    parseLimit(r),
	}
	if activeParam := r.URL.Query().Get("isActive"); activeParam != "" {
		active := activeParam == "true"
		opts.IsActive = &active
	}

	users, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listUsers", err)
		return
	}

	h.audit.record(r, "GET_ALL_USERS", fmt.Sprintf("Listed %d users", len(users)))
	writeSuccess(w, "listUsers", http.StatusOK, users, "users retrieved")
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getUser").Logger()
	id := mux.Vars(r)["id"]

	user, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getUser", err)
		return
	}

	h.audit.record(r, "GET_USER", fmt.Sprintf("Viewed user %s", id))
	writeSuccess(w, "getUser", http.StatusOK, user, "user retrieved")
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createUser").Logger()

	var in service.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createUser", "invalid request body")
		return
	}

	user, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createUser", err)
		return
	}

	h.audit.record(r, "CREATE_USER", fmt.Sprintf("Created user %s (%s)", user.ID, user.Username))
	writeSuccess(w, "createUser", http.StatusCreated, user, "user created")
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateUser").Logger()
	id := mux.Vars(r)["id"]

	var patch store.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateUser", "invalid request body")
		return
	}

	user, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateUser", err)
		return
	}

	h.audit.record(r, "UPDATE_USER", fmt.Sprintf("Updated user %s", id))
	writeSuccess(w, "updateUser", http.StatusOK, user, "user updated")
}

func (h *UserHandler) recordLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "recordLogin").Logger()
	id := mux.Vars(r)["id"]

	user, err := h.svc.RecordLogin(id)
	if err != nil {
		writeServiceError(w, logger, "recordLogin", err)
		return
	}

	h.audit.record(r, "USER_LOGIN", fmt.Sprintf("User %s logged in", id))
	writeSuccess(w, "recordLogin", http.StatusOK, user, "login recorded")
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteUser").Logger()
	id := mux.Vars(r)["id"]

	user, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteUser", err)
		return
	}

	h.audit.record(r, "DELETE_USER", fmt.Sprintf("Deleted user %s (%s)", id, user.Username))
	writeSuccess(w, "deleteUser", http.StatusOK, user, "user deleted")
}

func (h *UserHandler) getUserStats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getUserStats").Logger()

	stats, err := h.svc.Statistics()
	if err != nil {
		writeServiceError(w, logger, "getUserStats", err)
		return
	}

	h.audit.record(r, "GET_USER_STATS", "Viewed user statistics")
	writeSuccess(w, "getUserStats", http.StatusOK, stats, "user statistics computed")
}
