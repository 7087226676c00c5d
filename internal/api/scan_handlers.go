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

// ScanHandler handles security scan API endpoints
type ScanHandler struct {
	svc   *service.ScanService
	audit auditor
}

// NewScanHandler creates a new scan handler
func NewScanHandler(svc *service.ScanService, logs *service.ActivityLogService) *ScanHandler {
	return &ScanHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the scan routes
func (h *ScanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/scans", h.listScans).Methods("GET")
	r.HandleFunc("/api/scans", h.createScan).Methods("POST")
	r.HandleFunc("/api/scans/stats", h.getScanStats).Methods("GET")
	r.HandleFunc("/api/scans/{id}", h.getScan).Methods("GET")
	r.HandleFunc("/api/scans/{id}", h.updateScan).Methods("PUT")
	r.HandleFunc("/api/scans/{id}", h.deleteScan).Methods("DELETE")
	r.HandleFunc("/api/scans/{id}/start", h.startScan).Methods("POST")
	r.HandleFunc("/api/scans/{id}/complete", h.completeScan).Methods("POST")
	r.HandleFunc("/api/scans/{id}/fail", h.failScan).Methods("POST")
}

func (h *ScanHandler) listScans(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listScans").Logger()

	opts := store.ScanListOptions{
		ClientID: r.URL.Query().Get("clientId"),
		Status:   r.URL.Query().Get("status"),
		ScanType: r.URL.Query().Get("scanType"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  sortDirection(r),
		Limit:    parseLimit(r),
	}

	scans, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listScans", err)
		return
	}

	h.audit.record(r, "GET_ALL_SCANS", fmt.Sprintf("Listed %d scans", len(scans)))
	writeSuccess(w, "listScans", http.StatusOK, scans, "scans retrieved")
}

func (h *ScanHandler) getScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getScan").Logger()
	id := mux.Vars(r)["id"]

	scan, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getScan", err)
		return
	}

	h.audit.record(r, "GET_SCAN", fmt.Sprintf("Viewed scan %s", id))
	writeSuccess(w, "getScan", http.StatusOK, scan, "scan retrieved")
}

func (h *ScanHandler) createScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createScan").Logger()

	var in service.CreateScanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createScan", "invalid request body")
		return
	}
	if in.InitiatedBy == "" {
		in.InitiatedBy = actorID(r)
	}

	scan, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createScan", err)
		return
	}

	h.audit.record(r, "CREATE_SCAN",
		fmt.Sprintf("Scheduled %s scan %s for client %s", scan.ScanType, scan.ID, scan.ClientID))
	writeSuccess(w, "createScan", http.StatusCreated, scan, "scan scheduled")
}

func (h *ScanHandler) updateScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateScan").Logger()
	id := mux.Vars(r)["id"]

	var patch store.ScanPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateScan", "invalid request body")
		return
	}

	scan, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateScan", err)
		return
	}

	h.audit.record(r, "UPDATE_SCAN", fmt.Sprintf("Updated scan %s", id))
	writeSuccess(w, "updateScan", http.StatusOK, scan, "scan updated")
}

func (h *ScanHandler) startScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "startScan").Logger()
	id := mux.Vars(r)["id"]

	scan, err := h.svc.StartScan(id)
	if err != nil {
		writeServiceError(w, logger, "startScan", err)
		return
	}

	h.audit.record(r, "START_SCAN", fmt.Sprintf("Started scan %s", id))
	writeSuccess(w, "startScan", http.StatusOK, scan, "scan started")
}

func (h *ScanHandler) completeScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "completeScan").Logger()
	id := mux.Vars(r)["id"]

	var body struct {
		Findings int `json:"findings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "completeScan", "invalid request body")
		return
	}

	scan, err := h.svc.CompleteScan(id, body.Findings)
	if err != nil {
		writeServiceError(w, logger, "completeScan", err)
		return
	}

	h.audit.record(r, "COMPLETE_SCAN",
		fmt.Sprintf("Completed scan %s with %d findings", id, body.Findings))
	writeSuccess(w, "completeScan", http.StatusOK, scan, "scan completed")
}

func (h *ScanHandler) failScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "failScan").Logger()
	id := mux.Vars(r)["id"]

	scan, err := h.svc.FailScan(id)
	if err != nil {
		writeServiceError(w, logger, "failScan", err)
		return
	}

	h.audit.record(r, "FAIL_SCAN", fmt.Sprintf("Marked scan %s as failed", id))
	writeSuccess(w, "failScan", http.StatusOK, scan, "scan marked failed")
}

func (h *ScanHandler) deleteScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteScan").Logger()
	id := mux.Vars(r)["id"]

	scan, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteScan", err)
		return
	}

	h.audit.record(r, "DELETE_SCAN", fmt.Sprintf("Deleted scan %s", id))
	writeSuccess(w, "deleteScan", http.StatusOK, scan, "scan deleted")
}

func (h *ScanHandler) getScanStats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getScanStats").Logger()

	stats, err := h.svc.Statistics(r.URL.Query().Get("clientId"))
	if err != nil {
		writeServiceError(w, logger, "getScanStats", err)
		return
	}

	h.audit.record(r, "GET_SCAN_STATS", "Viewed scan statistics")
	writeSuccess(w, "getScanStats", http.StatusOK, stats, "scan statistics computed")
}
