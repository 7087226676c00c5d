// Package api provides the HTTP façade for the Sentinel Console REST API.
// Every handler calls its domain service, writes one audit-trail entry
// describing the actor and action, and wraps the result in a uniform
// success/error envelope for the dashboard UI.
package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/metrics"
	"sentinel-console/internal/models"
	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

// Response is the envelope returned from every façade call. The UI branches
// on Success; the failure path shows Error.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

const genericErrorMessage = "an unexpected error occurred"

// writeSuccess responds with a success envelope
func writeSuccess(w http.ResponseWriter, handler string, status int, data any, message string) {
	metrics.RequestsTotal.WithLabelValues(handler, "success").Inc()
	writeJSON(w, status, Response{Success: true, Data: data, Message: message})
}

// writeServiceError is the single point where service errors become error
// envelopes. It also emits the diagnostic log line.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, handler string, err error) {
	status := http.StatusInternalServerError

	var enumErr *models.InvalidEnumError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &enumErr), errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
	}

	message := err.Error()
	if message == "" {
		message = genericErrorMessage
	}

	logger.Error().Err(err).Int("status", status).Msg("Request failed")
	metrics.RequestsTotal.WithLabelValues(handler, "error").Inc()
	writeJSON(w, status, Response{Success: false, Error: message})
}

// writeBadRequest responds with a 400 error envelope for malformed input
func writeBadRequest(w http.ResponseWriter, handler, message string) {
	metrics.RequestsTotal.WithLabelValues(handler, "error").Inc()
	writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// actorID extracts the acting user's id from the request. The façade trusts
// the caller-supplied identity; it does not authenticate it.
func actorID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("userId")
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// auditor writes the per-request audit entry. Audit writes are decoupled
// from the primary result: a failed write is logged and counted, never
// surfaced to the caller.
type auditor struct {
	logs *service.ActivityLogService
}

func (a auditor) record(r *http.Request, action, details string) {
	userID := actorID(r)
	if userID == "" {
		userID = "anonymous"
	}

	_, err := a.logs.CreateLog(service.CreateLogInput{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: remoteIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write audit entry")
		metrics.AuditWriteFailures.Inc()
	}
}
