package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/metrics"
	"sentinel-console/internal/models"
	"sentinel-console/internal/service"
)

// ActivityLogHandler handles audit trail API endpoints
type ActivityLogHandler struct {
	svc   *service.ActivityLogService
	audit auditor
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(svc *service.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{
		svc:   svc,
		audit: auditor{logs: svc},
	}
}

// RegisterRoutes registers the activity log routes
func (h *ActivityLogHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/logs", h.listLogs).Methods("GET")
	r.HandleFunc("/api/logs", h.createLog).Methods("POST")
	r.HandleFunc("/api/logs/stats", h.getLogStats).Methods("GET")
	r.HandleFunc("/api/logs/purge", h.purgeLogs).Methods("DELETE")
}

// listLogs retrieves audit entries. Reading the trail is itself an audited
// action, so every call appends one GET_ALL_LOGS entry after the fetch.
// The userId parameter names the acting user only; filtering by author uses
// filterUserId so the two never collide.
func (h *ActivityLogHandler) listLogs(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listLogs").Logger()

	limit := parseLimit(r)
	userID := r.URL.Query().Get("filterUserId")
	action := r.URL.Query().Get("action")
	ranged := r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != ""

	var (
		entries []*models.ActivityLog
		err     error
	)
	switch {
	case userID != "":
		entries, err = h.svc.ByUser(userID, limit)
	case action != "":
		entries, err = h.svc.ByAction(action, limit)
	case ranged:
		var from, to time.Time
		from, to, err = parseTimeRange(r)
		if err != nil {
			writeBadRequest(w, "listLogs", err.Error())
			return
		}
		entries, err = h.svc.ByDateRange(from, to, limit)
	default:
		entries, err = h.svc.ListAll(limit)
	}
	if err != nil {
		writeServiceError(w, logger, "listLogs", err)
		return
	}

	h.audit.record(r, "GET_ALL_LOGS", fmt.Sprintf("Listed %d audit entries", len(entries)))
	writeSuccess(w, "listLogs", http.StatusOK, entries, "audit entries retrieved")
}

func (h *ActivityLogHandler) createLog(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createLog").Logger()

	var in service.CreateLogInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createLog", "invalid request body")
		return
	}
	if in.IPAddress == "" {
		in.IPAddress = remoteIP(r)
	}
	if in.UserAgent == "" {
		in.UserAgent = r.UserAgent()
	}

	entry, err := h.svc.CreateLog(in)
	if err != nil {
		writeServiceError(w, logger, "createLog", err)
		return
	}

	writeSuccess(w, "createLog", http.StatusCreated, entry, "audit entry recorded")
}

// purgeLogs removes audit entries older than the cutoff given by the
// required before parameter (RFC 3339). Partial failure is reported in the
// result rather than failing the whole request.
func (h *ActivityLogHandler) purgeLogs(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "purgeLogs").Logger()

	beforeParam := r.URL.Query().Get("before")
	if beforeParam == "" {
		writeBadRequest(w, "purgeLogs", "before parameter is required")
		return
	}
	cutoff, err := time.Parse(time.RFC3339, beforeParam)
	if err != nil {
		writeBadRequest(w, "purgeLogs", "invalid before timestamp: "+beforeParam)
		return
	}

	result, err := h.svc.DeleteOlderThan(cutoff)
	if err != nil {
		writeServiceError(w, logger, "purgeLogs", err)
		return
	}
	metrics.PurgedLogEntries.Add(float64(result.DeletedCount))

	h.audit.record(r, "PURGE_LOGS",
		fmt.Sprintf("Purged %d audit entries older than %s", result.DeletedCount, cutoff.Format(time.RFC3339)))
	writeSuccess(w, "purgeLogs", http.StatusOK, result, "audit entries purged")
}

func (h *ActivityLogHandler) getLogStats(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getLogStats").Logger()

	days := 0
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "getLogStats", "invalid days parameter: "+daysParam)
			return
		}
		days = parsed
	}

	stats, err := h.svc.Statistics(days)
	if err != nil {
		writeServiceError(w, logger, "getLogStats", err)
		return
	}

	h.audit.record(r, "GET_LOG_STATS", "Viewed audit activity statistics")
	writeSuccess(w, "getLogStats", http.StatusOK, stats, "audit statistics computed")
}
