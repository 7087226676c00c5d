package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

// MetricHandler handles security metric API endpoints
type MetricHandler struct {
	svc   *service.MetricService
	audit auditor
}

// NewMetricHandler creates a new metric handler
func NewMetricHandler(svc *service.MetricService, logs *service.ActivityLogService) *MetricHandler {
	return &MetricHandler{
		svc:   svc,
		audit: auditor{logs: logs},
	}
}

// RegisterRoutes registers the metric routes
func (h *MetricHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/metrics", h.listMetrics).Methods("GET")
	r.HandleFunc("/api/metrics", h.createMetric).Methods("POST")
	r.HandleFunc("/api/metrics/history", h.getHistory).Methods("GET")
	r.HandleFunc("/api/metrics/{id}", h.getMetric).Methods("GET")
	r.HandleFunc("/api/metrics/{id}", h.updateMetric).Methods("PUT")
	r.HandleFunc("/api/metrics/{id}", h.deleteMetric).Methods("DELETE")
	r.HandleFunc("/api/metrics/{id}/value", h.updateValue).Methods("PUT")
}

func (h *MetricHandler) listMetrics(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "listMetrics").Logger()

	opts := store.MetricListOptions{
		ClientID:   r.URL.Query().Get("clientId"),
		Category:   r.URL.Query().Get("category"),
		MetricName: r.URL.Query().Get("metricName"),
		SortBy:     r.URL.Query().Get("sortBy"),
		SortDir:    sortDirection(r),
		Limit:      parseLimit(r),
	}

	list, err := h.svc.List(opts)
	if err != nil {
		writeServiceError(w, logger, "listMetrics", err)
		return
	}

	h.audit.record(r, "GET_ALL_METRICS", fmt.Sprintf("Listed %d metrics", len(list)))
	writeSuccess(w, "listMetrics", http.StatusOK, list, "metrics retrieved")
}

func (h *MetricHandler) getMetric(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getMetric").Logger()
	id := mux.Vars(r)["id"]

	metric, err := h.svc.GetByID(id)
	if err != nil {
		writeServiceError(w, logger, "getMetric", err)
		return
	}

	h.audit.record(r, "GET_METRIC", fmt.Sprintf("Viewed metric %s", id))
	writeSuccess(w, "getMetric", http.StatusOK, metric, "metric retrieved")
}

func (h *MetricHandler) createMetric(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "createMetric").Logger()

	var in service.CreateMetricInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "createMetric", "invalid request body")
		return
	}

	metric, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, logger, "createMetric", err)
		return
	}

	h.audit.record(r, "CREATE_METRIC",
		fmt.Sprintf("Created metric %s (%s) for client %s", metric.ID, metric.MetricName, metric.ClientID))
	writeSuccess(w, "createMetric", http.StatusCreated, metric, "metric created")
}

func (h *MetricHandler) updateMetric(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateMetric").Logger()
	id := mux.Vars(r)["id"]

	var patch store.MetricPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "updateMetric", "invalid request body")
		return
	}

	metric, err := h.svc.Update(id, patch)
	if err != nil {
		writeServiceError(w, logger, "updateMetric", err)
		return
	}

	h.audit.record(r, "UPDATE_METRIC", fmt.Sprintf("Updated metric %s", id))
	writeSuccess(w, "updateMetric", http.StatusOK, metric, "metric updated")
}

func (h *MetricHandler) updateValue(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "updateMetricValue").Logger()
	id := mux.Vars(r)["id"]

	var body struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "updateMetricValue", "invalid request body")
		return
	}

	metric, err := h.svc.UpdateValue(id, body.Value)
	if err != nil {
		writeServiceError(w, logger, "updateMetricValue", err)
		return
	}

	h.audit.record(r, "UPDATE_METRIC_VALUE",
		fmt.Sprintf("Recorded value %g for metric %s", body.Value, id))
	writeSuccess(w, "updateMetricValue", http.StatusOK, metric, "metric value recorded")
}

func (h *MetricHandler) deleteMetric(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteMetric").Logger()
	id := mux.Vars(r)["id"]

	metric, err := h.svc.Delete(id)
	if err != nil {
		writeServiceError(w, logger, "deleteMetric", err)
		return
	}

	h.audit.record(r, "DELETE_METRIC", fmt.Sprintf("Deleted metric %s", id))
	writeSuccess(w, "deleteMetric", http.StatusOK, metric, "metric deleted")
}

func (h *MetricHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getMetricHistory").Logger()

	clientID := r.URL.Query().Get("clientId")
	metricName := r.URL.Query().Get("metricName")

	from, to, err := parseTimeRange(r)
	if err != nil {
		writeBadRequest(w, "getMetricHistory", err.Error())
		return
	}

	entries, err := h.svc.History(clientID, metricName, from, to)
	if err != nil {
		writeServiceError(w, logger, "getMetricHistory", err)
		return
	}

	h.audit.record(r, "GET_METRIC_HISTORY",
		fmt.Sprintf("Viewed history for metric %s of client %s", metricName, clientID))
	writeSuccess(w, "getMetricHistory", http.StatusOK, entries, "metric history retrieved")
}

// parseTimeRange reads from/to query parameters in RFC 3339 format. An
// absent range defaults to the trailing 30 days.
func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		parsed, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from timestamp: %s", fromParam)
		}
		from = parsed
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		parsed, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to timestamp: %s", toParam)
		}
		to = parsed
	}

	return from, to, nil
}
