package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
	"github.com/socialpress/socialpress/app/tasks"
)

// MockUserRepository implements a simple mock for testing
type MockUserRepository struct {
	users map[string]*database.User
	err   error
}

func (m *MockUserRepository) GetUserByName(name string) (*database.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[name], nil
}

func (m *MockUserRepository) GetUsers() ([]database.User, error) {
	var users []database.User
	for _, user := range m.users {
		users = append(users, *user)
	}
	return users, nil
}

func (m *MockUserRepository) GetUserCount() (int, error) {
	return len(m.users), nil
}

func (m *MockUserRepository) UpsertUser(user database.User) (string, error) {
	return "user-1", nil
}

func (m *MockUserRepository) UpdateLastScrapedAt(userID string, scrapedAt time.Time) error {
	return nil
}

func (m *MockUserRepository) ReplaceProfileRefs(userID, source string, refs []string) error {
	return nil
}

func (m *MockUserRepository) GetProfileRefs(userID, source string) ([]string, error) {
	return nil, nil
}

// MockRecordRepository implements a simple mock for testing
type MockRecordRepository struct {
	records  []database.Record
	total    int
	enriched int
}

func (m *MockRecordRepository) HasRecord(userID, source, nativeID string) (bool, error) {
	return false, nil
}

func (m *MockRecordRepository) InsertRecords(records []ingest.Record) (int, error) {
	return len(records), nil
}

func (m *MockRecordRepository) UpdateEnrichments(userID, source string, updates []ingest.EnrichmentUpdate) (int, error) {
	return len(updates), nil
}

func (m *MockRecordRepository) GetRecordCount() (int, error) {
	return m.total, nil
}

func (m *MockRecordRepository) GetRecordStats(userID string) (int, int, error) {
	return m.total, m.enriched, nil
}

func (m *MockRecordRepository) GetRecentRecords(userID string, limit int) ([]database.Record, error) {
	if limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

// MockScheduler implements a simple mock for testing
type MockScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (m *MockScheduler) Start() {}
func (m *MockScheduler) Stop()  {}

func (m *MockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, task)
	return nil
}

func testConfigCache(t *testing.T) *config.ConfigCache {
	t.Helper()

	tempDir := t.TempDir()
	content := `
email: "alice@example.com"

sources:
  twitter:
    - "nasa"
`
	if err := os.WriteFile(filepath.Join(tempDir, "alice.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := config.NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	return configCache
}

func newTestServer(t *testing.T, apiAccessKey string) (*gin.Engine, *MockScheduler, *MockRecordRepository) {
	t.Helper()

	userRepo := &MockUserRepository{users: map[string]*database.User{
		"alice": {ID: "user-1", Name: "alice", Email: "alice@example.com"},
	}}
	recordRepo := &MockRecordRepository{total: 5, enriched: 3}
	scheduler := &MockScheduler{}

	handler := NewHandler(testConfigCache(t), userRepo, recordRepo, nil, nil, scheduler)
	return NewServer(handler, apiAccessKey), scheduler, recordRepo
}

func doRequest(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t, "")

	w := doRequest(router, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["users"] != float64(1) {
		t.Errorf("Expected 1 user, got %v", body["users"])
	}
	if body["loaded_configurations"] != float64(1) {
		t.Errorf("Expected 1 loaded configuration, got %v", body["loaded_configurations"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t, "")

	w := doRequest(router, "GET", "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["records"] != float64(5) {
		t.Errorf("Expected 5 records, got %v", body["records"])
	}
}

func TestRootEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t, "")

	w := doRequest(router, "GET", "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["service"] != "SocialPress" {
		t.Errorf("Expected service 'SocialPress', got %v", body["service"])
	}

	apiStatus, ok := body["api_status"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected api_status object")
	}
	if apiStatus["enabled"] != false {
		t.Error("Expected API to be disabled without an access key")
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	router, _, _ := newTestServer(t, "")

	w := doRequest(router, "GET", "/api/users", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for disabled API, got %d", w.Code)
	}
}

func TestAPIAuthentication(t *testing.T) {
	router, _, _ := newTestServer(t, "secret")

	// No key
	w := doRequest(router, "GET", "/api/users", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without key, got %d", w.Code)
	}

	// Wrong key
	w = doRequest(router, "GET", "/api/users", map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with wrong key, got %d", w.Code)
	}

	// Valid X-API-Key header
	w = doRequest(router, "GET", "/api/users", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with valid key, got %d", w.Code)
	}

	// Valid Authorization Bearer header
	w = doRequest(router, "GET", "/api/users", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bearer token, got %d", w.Code)
	}
}

func TestAPIListUsers(t *testing.T) {
	router, _, _ := newTestServer(t, "secret")

	w := doRequest(router, "GET", "/api/users", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["total"] != float64(1) {
		t.Errorf("Expected 1 user, got %v", body["total"])
	}

	users, ok := body["users"].([]interface{})
	if !ok || len(users) != 1 {
		t.Fatalf("Expected a single-user list, got %v", body["users"])
	}
	user := users[0].(map[string]interface{})
	if user["name"] != "alice" {
		t.Errorf("Expected user alice, got %v", user["name"])
	}
	if user["id"] != "user-1" {
		t.Errorf("Expected database id user-1, got %v", user["id"])
	}
	if user["twitter_refs"] != float64(1) {
		t.Errorf("Expected 1 twitter ref, got %v", user["twitter_refs"])
	}
}

func TestAPIGetUserDetails(t *testing.T) {
	router, _, _ := newTestServer(t, "secret")

	w := doRequest(router, "GET", "/api/users/alice", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["name"] != "alice" {
		t.Errorf("Expected name alice, got %v", body["name"])
	}

	records, ok := body["records"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected records stats object")
	}
	if records["total"] != float64(5) || records["enriched"] != float64(3) {
		t.Errorf("Expected 5/3 record stats, got %v", records)
	}
}

func TestAPIGetUserDetailsNotFound(t *testing.T) {
	router, _, _ := newTestServer(t, "secret")

	w := doRequest(router, "GET", "/api/users/nobody", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown user, got %d", w.Code)
	}
}

func TestAPIGetUserRecords(t *testing.T) {
	router, _, recordRepo := newTestServer(t, "secret")
	postedAt := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	recordRepo.records = []database.Record{
		{UserID: "user-1", Source: "twitter", NativeID: "100", AuthorName: "NASA", Text: "Launch update", PostedAt: postedAt, Title: "Launch Day"},
	}

	w := doRequest(router, "GET", "/api/users/alice/records", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["total"] != float64(1) {
		t.Fatalf("Expected 1 record, got %v", body["total"])
	}

	records := body["records"].([]interface{})
	record := records[0].(map[string]interface{})
	if record["native_id"] != "100" {
		t.Errorf("Expected native id 100, got %v", record["native_id"])
	}
	if record["title"] != "Launch Day" {
		t.Errorf("Expected enriched title, got %v", record["title"])
	}
}

func TestAPIIngestUser(t *testing.T) {
	router, scheduler, _ := newTestServer(t, "secret")

	w := doRequest(router, "POST", "/api/users/alice/ingest", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}

	if len(scheduler.enqueued) != 2 {
		t.Fatalf("Expected 2 enqueued tasks, got %d", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeSyncUserConfig {
		t.Errorf("Expected sync task first, got %s", scheduler.enqueued[0].GetType())
	}
	if scheduler.enqueued[1].GetType() != tasks.TaskTypeIngestUser {
		t.Errorf("Expected ingest task second, got %s", scheduler.enqueued[1].GetType())
	}
	if scheduler.enqueued[1].GetUserName() != "alice" {
		t.Errorf("Expected task for alice, got %s", scheduler.enqueued[1].GetUserName())
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("Expected success response, got %v", body)
	}
}

func TestAPIIngestUserNotFound(t *testing.T) {
	router, scheduler, _ := newTestServer(t, "secret")

	w := doRequest(router, "POST", "/api/users/nobody/ingest", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown user, got %d", w.Code)
	}

	if len(scheduler.enqueued) != 0 {
		t.Errorf("Expected no enqueued tasks, got %d", len(scheduler.enqueued))
	}
}
