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

// ReportHandler handles assessment report API endpoints
type ReportHandler struct {
	svc   *service.ReportService
	audit auditor
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.ReportService, logs *service.ActivityLogService) *ReportHandler {
	return &ReportHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the report routes
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/reports", h.listReports).Methods("GET")
	r.HandleFunc("/api/reports", h.createReport).Methods("POST")
	r.HandleFunc("/api/reports/{id}", h.getReport).Methods("GET")
	r.HandleFunc("/api/reports/{id}", h.updateReport).Methods("PUT")
	r.HandleFunc("/api/reports/{id}", h.deleteReport).Methods("DELETE")
}

func (h *ReportHandler) listReports(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listReports").Logger()

	opts := store.ReportListOptions{
		ClientID: r.URL.Query().Get("clientId"),
		Status:   r.URL.Query().Get("status"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDir:  sortDirection(r),
		Limit:    parseLimit(r),
	}

	reports, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listReports", err)
		return
	}

	h.audit.record(r, "GET_ALL_REPORTS", fmt.Sprintf("Listed %d reports", len(reports)))
	writeSuccess(w, "listReports", http.StatusOK, reports, "reports retrieved")
}

func (h *ReportHandler) getReport(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getReport").Logger()
	id := mux.Vars(r)["id"]

	report, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getReport", err)
		return
	}

	h.audit.record(r, "GET_REPORT", fmt.Sprintf("Viewed report %s", id))
	writeSuccess(w, "getReport", http.StatusOK, report, "report retrieved")
}

func (h *ReportHandler) createReport(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createReport").Logger()

	var in service.CreateReportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createReport", "invalid request body")
		return
	}

	report, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createReport", err)
		return
	}

	h.audit.record(r, "CREATE_REPORT",
		fmt.Sprintf("Created report %s (%s) for client %s", report.ID, report.Title, report.ClientID))
	writeSuccess(w, "createReport", http.StatusCreated, report, "report created")
}

func (h *ReportHandler) updateReport(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateReport").Logger()
	id := mux.Vars(r)["id"]

	var patch store.ReportPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateReport", "invalid request body")
		return
	}

	report, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateReport", err)
		return
	}

	h.audit.record(r, "UPDATE_REPORT", fmt.Sprintf("Updated report %s", id))
	writeSuccess(w, "updateReport", http.StatusOK, report, "report updated")
}

func (h *ReportHandler) deleteReport(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteReport").Logger()
	id := mux.Vars(r)["id"]

	report, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteReport", err)
		return
	}

	h.audit.record(r, "DELETE_REPORT", fmt.Sprintf("Deleted report %s", id))
	writeSuccess(w, "deleteReport", http.StatusOK, report, "report deleted")
}
