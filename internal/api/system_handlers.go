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

// SystemHandler handles protected-system API endpoints
type SystemHandler struct {
	svc   *service.SystemService
	audit auditor
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(svc *service.SystemService, logs *service.ActivityLogService) *SystemHandler {
	return &SystemHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/systems", h.listSystems).Methods("GET")
	r.HandleFunc("/api/systems", h.createSystem).Methods("POST")
	r.HandleFunc("/api/systems/stats", h.getSystemStats).Methods("GET")
	r.HandleFunc("/api/systems/{id}", h.getSystem).Methods("GET")
	r.HandleFunc("/api/systems/{id}", h.updateSystem).Methods("PUT")
	r.HandleFunc("/api/systems/{id}", h.deleteSystem).Methods("DELETE")
}

func (h *SystemHandler) listSystems(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listSystems").Logger()

	opts := store.SystemListOptions{
		ClientID: r.URL.Query().Get("clientId"),
		Status:   r.URL.Query().Get("status"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  sortDirection(r),
		Limit:    parseLimit(r),
	}

	systems, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listSystems", err)
		return
	}

	h.audit.record(r, "GET_ALL_SYSTEMS", fmt.Sprintf("Listed %d systems", len(systems)))
	writeSuccess(w, "listSystems", http.StatusOK, systems, "systems retrieved")
}

func (h *SystemHandler) getSystem(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getSystem").Logger()
	id := mux.Vars(r)["id"]

	system, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getSystem", err)
		return
	}

	h.audit.record(r, "GET_SYSTEM", fmt.Sprintf("Viewed system %s", id))
	writeSuccess(w, "getSystem", http.StatusOK, system, "system retrieved")
}

func (h *SystemHandler) createSystem(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createSystem").Logger()

	var in service.CreateSystemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createSystem", "invalid request body")
		return
	}

	system, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createSystem", err)
		return
	}

	h.audit.record(r, "CREATE_SYSTEM",
		fmt.Sprintf("Registered system %s (%s) for client %s", system.ID, system.Name, system.ClientID))
	writeSuccess(w, "createSystem", http.StatusCreated, system, "system registered")
}

func (h *SystemHandler) updateSystem(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateSystem").Logger()
	id := mux.Vars(r)["id"]

	var patch store.SystemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateSystem", "invalid request body")
		return
	}

	system, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateSystem", err)
		return
	}

	h.audit.record(r, "UPDATE_SYSTEM", fmt.Sprintf("Updated system %s", id))
	writeSuccess(w, "updateSystem", http.StatusOK, system, "system updated")
}

func (h *SystemHandler) deleteSystem(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteSystem").Logger()
	id := mux.Vars(r)["id"]

	system, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteSystem", err)
		return
	}

	h.audit.record(r, "DELETE_SYSTEM", fmt.Sprintf("Deleted system %s (%s)", id, system.Name))
	writeSuccess(w, "deleteSystem", http.StatusOK, system, "system deleted")
}

func (h *SystemHandler) getSystemStats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getSystemStats").Logger()

	stats, err := h.svc.Statistics(r.URL.Query().Get("clientId"))
	if err != nil {
		writeServiceError(w, logger, "getSystemStats", err)
		return
	}

	h.audit.record(r, "GET_SYSTEM_STATS", "Viewed system statistics")
	writeSuccess(w, "getSystemStats", http.StatusOK, stats, "system statistics computed")
}
