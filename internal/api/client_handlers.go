package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

// ClientHandler handles business-client API endpoints
type ClientHandler struct {
	svc   *service.ClientService
	audit auditor
}

// NewClientHandler creates a new client handler
func NewClientHandler(svc *service.ClientService, logs *service.ActivityLogService) *ClientHandler {
	return &ClientHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the client routes
func (h *ClientHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/clients", h.listClients).Methods("GET")
	r.HandleFunc("/api/clients", h.createClient).Methods("POST")
	r.HandleFunc("/api/clients/stats", h.getClientStats).Methods("GET")
	r.HandleFunc("/api/clients/{id}", h.getClient).Methods("GET")
	r.HandleFunc("/api/clients/{id}", h.updateClient).Methods("PUT")
	r.HandleFunc("/api/clients/{id}", h.deleteClient).Methods("DELETE")
}

func (h *ClientHandler) listClients(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listClients").Logger()

	opts := store.ClientListOptions{
		Status:   r.URL.Query().Get("status"),
		Size:     r.URL.Query().Get("size"),
		Industry: r.URL.Query().Get("industry"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  sortDirection(r),
		Limit:    parseLimit(r),
	}

	clients, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listClients", err)
		return
	}

	h.audit.record(r, "GET_ALL_CLIENTS", fmt.Sprintf("Listed %d clients", len(clients)))
	writeSuccess(w, "listClients", http.StatusOK, clients, "clients retrieved")
}

func (h *ClientHandler) getClient(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getClient").Logger()
	id := mux.Vars(r)["id"]

	client, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getClient", err)
		return
	}

	h.audit.record(r, "GET_CLIENT", fmt.Sprintf("Viewed client %s", id))
	writeSuccess(w, "getClient", http.StatusOK, client, "client retrieved")
}

func (h *ClientHandler) createClient(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createClient").Logger()

	var in service.CreateClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createClient", "invalid request body")
		return
	}

	client, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createClient", err)
		return
	}

	h.audit.record(r, "CREATE_CLIENT", fmt.Sprintf("Created client %s (%s)", client.ID, client.Name))
	writeSuccess(w, "createClient", http.StatusCreated, client, "client created")
}

func (h *ClientHandler) updateClient(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateClient").Logger()
	id := mux.Vars(r)["id"]

	var patch store.ClientPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateClient", "invalid request body")
		return
	}

	client, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateClient", err)
		return
	}

	h.audit.record(r, "UPDATE_CLIENT", fmt.Sprintf("Updated client %s", id))
	writeSuccess(w, "updateClient", http.StatusOK, client, "client updated")
}

func (h *ClientHandler) deleteClient(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteClient").Logger()
	id := mux.Vars(r)["id"]

	client, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteClient", err)
		return
	}

	h.audit.record(r, "DELETE_CLIENT", fmt.Sprintf("Deleted client %s (%s)", id, client.Name))
	writeSuccess(w, "deleteClient", http.StatusOK, client, "client deleted")
}

func (h *ClientHandler) getClientStats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getClientStats").Logger()

	stats, err := h.svc.Statistics()
	if err != nil {
		writeServiceError(w, logger, "getClientStats", err)
		return
	}

	h.audit.record(r, "GET_CLIENT_STATS", "Viewed client statistics")
	writeSuccess(w, "getClientStats", http.StatusOK, stats, "client statistics computed")
}

// parseLimit reads the limit query parameter, returning 0 (no limit) when
// absent or malformed.
func parseLimit(r *http.Request) int {
	limitParam := r.URL.Query().Get("limit")
	if limitParam == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func sortDirection(r *http.Request) store.SortDirection {
	if r.URL.Query().Get("sortDir") == "desc" {
		return store.SortDesc
	}
	return store.SortAsc
}
