package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"sentinel-console/internal/api"
	"sentinel-console/internal/models"
	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// setupTestEnvironment wires the full daemon surface against a temp database
func setupTestEnvironment(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sentinel-integration-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	s, err := store.New(filepath.Join(tempDir, "data", "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tempDir)
	})

	logService := service.NewActivityLogService(s)

	router := mux.NewRouter()
	api.NewUserHandler(service.NewUserService(s), logService).RegisterRoutes(router)
	api.NewClientHandler(service.NewClientService(s), logService).RegisterRoutes(router)
	api.NewThreatHandler(service.NewThreatService(s), logService).RegisterRoutes(router)
	api.NewSystemHandler(service.NewSystemService(s), logService).RegisterRoutes(router)
	api.NewScanHandler(service.NewScanService(s), logService).RegisterRoutes(router)
	api.NewMetricHandler(service.NewMetricService(s), logService).RegisterRoutes(router)
	api.NewReportHandler(service.NewReportService(s), logService).RegisterRoutes(router)
	api.NewActivityLogHandler(logService).RegisterRoutes(router)

	return router, s
}

func request(t *testing.T, h http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "integration-tester")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response envelope: %v", err)
	}

	return rec.Code, resp
}

// TestConsultingWorkflow drives a full engagement through the API: register a
// client, record its assets and threats, run a scan, track a metric, and
// verify the audit trail saw every step.
func TestConsultingWorkflow(t *testing.T) {
	h, s := setupTestEnvironment(t)

	// Register the client
	code, resp := request(t, h, "POST", "/api/clients", map[string]any{
		"name":          "Globex Industries",
		"contactPerson": "Sam Okafor",
		"email":         "sam@globex.example.com",
		"industry":      "manufacturing",
		"size":          "enterprise",
	})
	if code != http.StatusCreated || !resp.Success {
		t.Fatalf("Client registration failed: code=%d error=%s", code, resp.Error)
	}
	var client struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &client); err != nil {
		t.Fatalf("Failed to decode client: %v", err)
	}

	// Register a protected system
	code, resp = request(t, h, "POST", "/api/systems", map[string]any{
		"clientId":   client.ID,
		"name":       "erp-prod",
		"systemType": "server",
	})
	if code != http.StatusCreated {
		t.Fatalf("System registration failed: code=%d error=%s", code, resp.Error)
	}

	// Record a threat against it
	code, resp = request(t, h, "POST", "/api/threats", map[string]any{
		"clientId":        client.ID,
		"threatType":      "ransomware",
		"severity":        "critical",
		"affectedSystems": []string{"erp-prod"},
	})
	if code != http.StatusCreated {
		t.Fatalf("Threat recording failed: code=%d error=%s", code, resp.Error)
	}

	// Run a scan through its lifecycle
	code, resp = request(t, h, "POST", "/api/scans", map[string]any{
		"clientId": client.ID,
		"scanType": "vulnerability",
	})
	if code != http.StatusCreated {
		t.Fatalf("Scan scheduling failed: code=%d error=%s", code, resp.Error)
	}
	var scan struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &scan); err != nil {
		t.Fatalf("Failed to decode scan: %v", err)
	}

	if code, resp = request(t, h, "POST", "/api/scans/"+scan.ID+"/start", nil); code != http.StatusOK {
		t.Fatalf("Scan start failed: code=%d error=%s", code, resp.Error)
	}
	code, resp = request(t, h, "POST", "/api/scans/"+scan.ID+"/complete", map[string]any{"findings": 12})
	if code != http.StatusOK {
		t.Fatalf("Scan completion failed: code=%d error=%s", code, resp.Error)
	}

	// Track a metric and update it
	code, resp = request(t, h, "POST", "/api/metrics", map[string]any{
		"clientId":    client.ID,
		"metricName":  "risk_score",
		"metricValue": 64,
		"category":    "score",
	})
	if code != http.StatusCreated {
		t.Fatalf("Metric creation failed: code=%d error=%s", code, resp.Error)
	}
	var metric struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &metric); err != nil {
		t.Fatalf("Failed to decode metric: %v", err)
	}
	code, resp = request(t, h, "PUT", "/api/metrics/"+metric.ID+"/value", map[string]any{"value": 48})
	if code != http.StatusOK {
		t.Fatalf("Metric value update failed: code=%d error=%s", code, resp.Error)
	}

	// Cross-domain statistics reflect the engagement
	code, resp = request(t, h, "GET", "/api/scans/stats?clientId="+client.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("Scan stats failed: code=%d error=%s", code, resp.Error)
	}
	var scanStats struct {
		TotalScans    int `json:"totalScans"`
		TotalFindings int `json:"totalFindings"`
	}
	if err := json.Unmarshal(resp.Data, &scanStats); err != nil {
		t.Fatalf("Failed to decode scan stats: %v", err)
	}
	if scanStats.TotalScans != 1 || scanStats.TotalFindings != 12 {
		t.Errorf("Expected 1 scan with 12 findings, got %d scans / %d findings",
			scanStats.TotalScans, scanStats.TotalFindings)
	}

	// Every write above left an audit entry attributed to the caller
	entries, err := s.ListActivityLogs(store.ActivityLogListOptions{UserID: "integration-tester"})
	if err != nil {
		t.Fatalf("Failed to list audit entries: %v", err)
	}
	if len(entries) < 8 {
		t.Errorf("Expected at least 8 audit entries for the workflow, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Timestamp.IsZero() {
			t.Error("Audit entry missing timestamp")
		}
	}
}

// TestAuditTrailReadAndPurge verifies the self-auditing trail endpoints
func TestAuditTrailReadAndPurge(t *testing.T) {
	h, s := setupTestEnvironment(t)

	// Seed an expired entry directly
	_, err := s.CreateActivityLog(&models.ActivityLog{
		UserID:    "old-user",
		Action:    "OLD_ACTION",
		Timestamp: time.Now().AddDate(0, 0, -200),
	})
	if err != nil {
		t.Fatalf("Failed to seed old entry: %v", err)
	}

	// Reading the trail records GET_ALL_LOGS as a side effect
	code, resp := request(t, h, "GET", "/api/logs", nil)
	if code != http.StatusOK || !resp.Success {
		t.Fatalf("Log listing failed: code=%d error=%s", code, resp.Error)
	}

	sideEffect, err := s.ListActivityLogs(store.ActivityLogListOptions{Action: "GET_ALL_LOGS"})
	if err != nil {
		t.Fatalf("Failed to list side-effect entries: %v", err)
	}
	if len(sideEffect) != 1 {
		t.Fatalf("Expected exactly 1 GET_ALL_LOGS entry, got %d", len(sideEffect))
	}

	// Purge removes only entries older than the cutoff
	cutoff := time.Now().AddDate(0, 0, -90).Format(time.RFC3339)
	code, resp = request(t, h, "DELETE", "/api/logs/purge?before="+cutoff, nil)
	if code != http.StatusOK {
		t.Fatalf("Purge failed: code=%d error=%s", code, resp.Error)
	}
	var purge struct {
		DeletedCount int `json:"deletedCount"`
	}
	if err := json.Unmarshal(resp.Data, &purge); err != nil {
		t.Fatalf("Failed to decode purge result: %v", err)
	}
	if purge.DeletedCount != 1 {
		t.Errorf("Expected 1 purged entry, got %d", purge.DeletedCount)
	}

	remaining, err := s.ListActivityLogs(store.ActivityLogListOptions{Action: "OLD_ACTION"})
	if err != nil {
		t.Fatalf("Failed to list remaining entries: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected old entry to be purged, found %d", len(remaining))
	}
}
