package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

// newTestRouter wires the full API surface against a temporary database
func newTestRouter(t *testing.T) (*mux.Router, *store.Store) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sentinel-api-test")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tempDir)
	})

	logService := service.NewActivityLogService(s)

	router := mux.NewRouter()
	NewUserHandler(service.NewUserService(s), logService).RegisterRoutes(router)
	NewClientHandler(service.NewClientService(s), logService).RegisterRoutes(router)
	NewThreatHandler(service.NewThreatService(s), logService).RegisterRoutes(router)
	NewSystemHandler(service.NewSystemService(s), logService).RegisterRoutes(router)
	NewScanHandler(service.NewScanService(s), logService).RegisterRoutes(router)
	NewMetricHandler(service.NewMetricService(s), logService).RegisterRoutes(router)
	NewReportHandler(service.NewReportService(s), logService).RegisterRoutes(router)
	NewActivityLogHandler(logService).RegisterRoutes(router)

	return router, s
}

// doJSON performs a request with an optional JSON body and decodes the envelope
func doJSON(t *testing.T, router *mux.Router, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "tester")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec, resp
}

func createTestClient(t *testing.T, router *mux.Router) map[string]any {
	t.Helper()

	rec, resp := doJSON(t, router, "POST", "/api/clients", map[string]any{
		"name":          "Acme Corp",
		"contactPerson": "Jordan Reyes",
		"email":         "jordan@acme.example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	client, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	return client
}

func TestCreateClientEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	client := createTestClient(t, router)

	assert.NotEmpty(t, client["id"])
	assert.Equal(t, "active", client["status"])
	assert.Equal(t, "small", client["size"])
	assert.NotEmpty(t, client["registrationDate"])
}

func TestCreateClientValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, "POST", "/api/clients", map[string]any{
		"name": "No Contact Info",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestInvalidEnumRejected(t *testing.T) {
	router, _ := newTestRouter(t)
	client := createTestClient(t, router)

	rec, resp := doJSON(t, router, "POST", "/api/threats", map[string]any{
		"clientId":   client["id"],
		"threatType": "malware",
		"severity":   "catastrophic",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "catastrophic")
}

func TestDeleteMissingThreatReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, "DELETE", "/api/threats/no-such-id", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestScanTransitionConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	client := createTestClient(t, router)

	rec, resp := doJSON(t, router, "POST", "/api/scans", map[string]any{
		"clientId": client["id"],
		"scanType": "network",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	scan := resp.Data.(map[string]any)
	scanID := scan["id"].(string)

	// Completing a scan that never started conflicts with its lifecycle
	rec, resp = doJSON(t, router, "POST", "/api/scans/"+scanID+"/complete",
		map[string]any{"findings": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)

	rec, resp = doJSON(t, router, "POST", "/api/scans/"+scanID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = doJSON(t, router, "POST", "/api/scans/"+scanID+"/complete",
		map[string]any{"findings": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	completed := resp.Data.(map[string]any)
	assert.Equal(t, "completed", completed["status"])
	assert.Equal(t, float64(3), completed["findings"])
}

func TestUpdateScanEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	client := createTestClient(t, router)

	rec, resp := doJSON(t, router, "POST", "/api/scans", map[string]any{
		"clientId": client["id"],
		"scanType": "network",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	scan := resp.Data.(map[string]any)
	scanID := scan["id"].(string)

	rec, resp = doJSON(t, router, "PUT", "/api/scans/"+scanID,
		map[string]any{"systemsCovered": 14})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	updated := resp.Data.(map[string]any)
	assert.Equal(t, float64(14), updated["systemsCovered"])
	// The merge patch leaves lifecycle fields untouched
	assert.Equal(t, "scheduled", updated["status"])

	// Lifecycle-invalid status values are still rejected on the update path
	rec, resp = doJSON(t, router, "PUT", "/api/scans/"+scanID,
		map[string]any{"status": "exploded"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestListLogsRecordsAuditEntry(t *testing.T) {
	router, s := newTestRouter(t)

	rec, resp := doJSON(t, router, "GET", "/api/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	// Reading the trail appends exactly one GET_ALL_LOGS entry
	entries, err := s.ListActivityLogs(store.ActivityLogListOptions{Action: "GET_ALL_LOGS"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tester", entries[0].UserID)
}

func TestAuditActorFallsBackToAnonymous(t *testing.T) {
	router, s := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/clients", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := s.ListActivityLogs(store.ActivityLogListOptions{Action: "GET_ALL_CLIENTS"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "anonymous", entries[0].UserID)
}

func TestListLogsLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	// Each listing appends an entry, so the trail grows as we read it
	for i := 0; i < 6; i++ {
		rec, _ := doJSON(t, router, "GET", "/api/logs", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := doJSON(t, router, "GET", "/api/logs?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 5)
}

func TestListLogsActorParamDoesNotFilter(t *testing.T) {
	router, s := newTestRouter(t)

	// Seed entries authored by several users
	for _, userID := range []string{"u1", "u2", "u3"} {
		_, resp := doJSON(t, router, "POST", "/api/logs", map[string]any{
			"userId": userID,
			"action": "SEEDED_ACTION",
		})
		require.True(t, resp.Success)
	}

	// userId identifies the caller, not an author filter
	req := httptest.NewRequest("GET", "/api/logs?limit=5&userId=u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 3)

	authors := make(map[string]bool)
	for _, e := range entries {
		authors[e.(map[string]any)["userId"].(string)] = true
	}
	assert.True(t, authors["u2"] && authors["u3"], "entries by other users must still be listed")

	audit, err := s.ListActivityLogs(store.ActivityLogListOptions{Action: "GET_ALL_LOGS"})
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, "u1", audit[0].UserID)
}

func TestListLogsFilterByAuthor(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, userID := range []string{"u1", "u1", "u2"} {
		_, resp := doJSON(t, router, "POST", "/api/logs", map[string]any{
			"userId": userID,
			"action": "SEEDED_ACTION",
		})
		require.True(t, resp.Success)
	}

	rec, resp := doJSON(t, router, "GET", "/api/logs?filterUserId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "u1", e.(map[string]any)["userId"])
	}
}

func TestPurgeLogsRequiresCutoff(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, "DELETE", "/api/logs/purge", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestLogStats(t *testing.T) {
	router, _ := newTestRouter(t)

	// Generate some trail activity first
	createTestClient(t, router)

	rec, resp := doJSON(t, router, "GET", "/api/logs/stats?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	stats := resp.Data.(map[string]any)
	byDay := stats["byDay"].(map[string]any)
	assert.Len(t, byDay, 7)
}

func TestUserLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, "POST", "/api/users", map[string]any{
		"username": "consultant1",
		"email":    "c1@example.com",
		"userType": "consultant",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := resp.Data.(map[string]any)

	rec, resp = doJSON(t, router, "POST", "/api/users/"+user["id"].(string)+"/login", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := resp.Data.(map[string]any)
	assert.NotEmpty(t, updated["lastLogin"])
}

func TestMetricValueEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	client := createTestClient(t, router)

	rec, resp := doJSON(t, router, "POST", "/api/metrics", map[string]any{
		"clientId":    client["id"],
		"metricName":  "patch_coverage",
		"metricValue": 80,
		"category":    "compliance",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	metric := resp.Data.(map[string]any)

	rec, resp = doJSON(t, router, "PUT", "/api/metrics/"+metric["id"].(string)+"/value",
		map[string]any{"value": 90})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := resp.Data.(map[string]any)
	assert.Equal(t, float64(90), updated["metricValue"])
	assert.Equal(t, float64(80), updated["previousValue"])
	assert.InDelta(t, 12.5, updated["changePercentage"].(float64), 0.0001)
}

func TestStatsRouteNotShadowedByID(t *testing.T) {
	router, _ := newTestRouter(t)

	// /api/threats/stats must hit the stats handler, not the {id} route
	rec, resp := doJSON(t, router, "GET", "/api/threats/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	stats := resp.Data.(map[string]any)
	assert.Equal(t, float64(0), stats["totalThreats"])
}
