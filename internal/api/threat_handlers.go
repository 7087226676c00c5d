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

// ThreatHandler handles threat API endpoints
type ThreatHandler struct {
	svc   *service.ThreatService
	audit auditor
}

// NewThreatHandler creates a new threat handler
func NewThreatHandler(svc *service.ThreatService, logs *service.ActivityLogService) *ThreatHandler {
	return &ThreatHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the threat routes
func (h *ThreatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/threats", h.listThreats).Methods("GET")
	r.HandleFunc("/api/threats", h.createThreat).Methods("POST")
	r.HandleFunc("/api/threats/stats", h.getThreatStats).Methods("GET")
	r.HandleFunc("/api/threats/{id}", h.getThreat).Methods("GET")
	r.HandleFunc("/api/threats/{id}", h.updateThreat).Methods("PUT")
	r.HandleFunc("/api/threats/{id}", h.deleteThreat).Methods("DELETE")
}

func (h *ThreatHandler) listThreats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listThreats").Logger()

	opts := store.ThreatListOptions{
		ClientID: r.URL.Query().Get("clientId"),
		Severity: r.URL.Query().Get("severity"),
		Status:   r.URL.Query().Get("status"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  sortDirection(r),
		Limit:    parseLimit(r),
	}

	threats, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listThreats", err)
		return
	}

	h.audit.record(r, "GET_ALL_THREATS", fmt.Sprintf("Listed %d threats", len(threats)))
	writeSuccess(w, "listThreats", http.StatusOK, threats, "threats retrieved")
}

func (h *ThreatHandler) getThreat(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getThreat").Logger()
	id := mux.Vars(r)["id"]

	threat, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getThreat", err)
		return
	}

	h.audit.record(r, "GET_THREAT", fmt.Sprintf("Viewed threat %s", id))
	writeSuccess(w, "getThreat", http.StatusOK, threat, "threat retrieved")
}

func (h *ThreatHandler) createThreat(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createThreat").Logger()

	var in service.CreateThreatInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createThreat", "invalid request body")
		return
	}

	threat, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createThreat", err)
		return
	}

	h.audit.record(r, "CREATE_THREAT",
		fmt.Sprintf("Recorded %s threat %s for client %s", threat.Severity, threat.ID, threat.ClientID))
	writeSuccess(w, "createThreat", http.StatusCreated, threat, "threat recorded")
}

func (h *ThreatHandler) updateThreat(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateThreat").Logger()
	id := mux.Vars(r)["id"]

	var patch store.ThreatPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateThreat", "invalid request body")
		return
	}

	threat, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateThreat", err)
		return
	}

	h.audit.record(r, "UPDATE_THREAT", fmt.Sprintf("Updated threat %s", id))
	writeSuccess(w, "updateThreat", http.StatusOK, threat, "threat updated")
}

func (h *ThreatHandler) deleteThreat(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteThreat").Logger()
	id := mux.Vars(r)["id"]

	threat, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteThreat", err)
		return
	}

	h.audit.record(r, "DELETE_THREAT", fmt.Sprintf("Deleted threat %s", id))
	writeSuccess(w, "deleteThreat", http.StatusOK, threat, "threat deleted")
}

func (h *ThreatHandler) getThreatStats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getThreatStats").Logger()

	stats, err := h.svc.Statistics(r.URL.Query().Get("clientId"))
	if err != nil {
		writeServiceError(w, logger, "getThreatStats", err)
		return
	}

	h.audit.record(r, "GET_THREAT_STATS", "Viewed threat statistics")
	writeSuccess(w, "getThreatStats", http.StatusOK, stats, "threat statistics computed")
}
