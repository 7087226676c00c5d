package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/config"
	"sentinel-console/internal/store"
)

// Version is the daemon version reported by the status endpoints
const Version = "1.0.0"

// StatusHandler handles daemon status API endpoints
type StatusHandler struct {
	store     *store.Store
	cfg       *config.Config
	startTime time.Time
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(s *store.Store, cfg *config.Config) *StatusHandler {
	return &StatusHandler{
		store:     s,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers the status routes
func (h *StatusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/status", h.getStatus).Methods("GET")
	r.HandleFunc("/api/status/health", h.getHealthCheck).Methods("GET")
	r.HandleFunc("/api/status/database", h.getDatabaseStatus).Methods("GET")
}

// getStatus returns the overall daemon status
func (h *StatusHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getStatus").Logger()

	dbStats, err := h.store.Stats()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve database stats")
		dbStats = map[string]any{}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := map[string]any{
		"status":    "healthy",
		"version":   Version,
		"uptime":    time.Since(h.startTime).String(),
		"startTime": h.startTime,
		"system": map[string]any{
			"goVersion":    runtime.Version(),
			"goArch":       runtime.GOARCH,
			"goOS":         runtime.GOOS,
			"numCPU":       runtime.NumCPU(),
			"numGoroutine": runtime.NumGoroutine(),
		},
		"memory": map[string]any{
			"alloc":      memStats.Alloc / 1024 / 1024, // MB
			"totalAlloc": memStats.TotalAlloc / 1024 / 1024,
			"sys":        memStats.Sys / 1024 / 1024,
			"numGC":      memStats.NumGC,
		},
		"config": map[string]any{
			"serverPort":     h.cfg.Server.Port,
			"auditRetention": h.cfg.Audit.RetentionDays,
			"metricsEnabled": h.cfg.Metrics.Enabled,
			"loggingLevel":   h.cfg.Logging.Level,
		},
		"database": map[string]any{
			"path":        h.cfg.Database.Path,
			"sizeBytes":   dbStats["sizeBytes"],
			"clientCount": dbStats["clientCount"],
			"threatCount": dbStats["threatCount"],
			"systemCount": dbStats["systemCount"],
			"scanCount":   dbStats["scanCount"],
			"logCount":    dbStats["logCount"],
		},
		"timestamp": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("Failed to encode status response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// getHealthCheck returns a simple health check response
func (h *StatusHandler) getHealthCheck(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getHealthCheck").Logger()

	status := "healthy"
	if err := h.store.Ping(); err != nil {
		status = "unhealthy"
		logger.Error().Err(err).Msg("Database ping failed")
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("Failed to encode health check response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// getDatabaseStatus returns detailed database status information
func (h *StatusHandler) getDatabaseStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getDatabaseStatus").Logger()

	dbStats, err := h.store.Stats()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve database stats")
		http.Error(w, "Failed to retrieve database status", http.StatusInternalServerError)
		return
	}

	sizeBytes, _ := dbStats["sizeBytes"].(int64)

	response := map[string]any{
		"status":          "online",
		"path":            h.cfg.Database.Path,
		"sizeBytes":       sizeBytes,
		"sizeMB":          float64(sizeBytes) / 1024 / 1024,
		"userCount":       dbStats["userCount"],
		"clientCount":     dbStats["clientCount"],
		"threatCount":     dbStats["threatCount"],
		"systemCount":     dbStats["systemCount"],
		"scanCount":       dbStats["scanCount"],
		"metricCount":     dbStats["metricCount"],
		"reportCount":     dbStats["reportCount"],
		"logCount":        dbStats["logCount"],
		"retentionDays":   h.cfg.Audit.RetentionDays,
		"journalMode":     "WAL",
		"synchronousMode": "NORMAL",
		"timestamp":       time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("Failed to encode database status")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
