package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/security"
	"github.com/terraincognita07/forgeboard/internal/services"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, time.May, 20, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	app      *fiber.App
	database *gorm.DB
	repos    *db.Repositories
	handler  *Handler
	feed     *db.ChangeFeed
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "forgeboard-api-test.db"))
	require.NoError(t, err, "open sqlite")
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	feed := db.NewChangeFeed(8)
	repos := db.NewRepositories(database, feed)
	location := time.UTC
	streaks := services.NewStreakService(repos.DailyLogs, services.DefaultStreakConfig(), location)
	tokens, err := security.NewTokenIssuer([]byte("test-secret-key"), time.Hour)
	require.NoError(t, err)

	handler, err := NewHandler(Dependencies{
		Auth:     services.NewAuthService(repos.Users),
		Projects: services.NewProjectService(repos.Projects, location),
		Ledger:   services.NewLedgerService(repos.Projects, repos.Installments, location),
		Expenses: services.NewExpenseService(repos.Expenses, repos.Projects, location),
		Streaks:  streaks,
		Summary:  services.NewSummaryService(repos.Projects, repos.Installments, repos.Expenses, streaks, location),
		Tokens:   tokens,
		Feed:     feed,
		Location: location,
	})
	require.NoError(t, err)
	handler.now = func() time.Time { return testNow }

	app := fiber.New()
	RegisterRoutes(app, handler)
	return &testEnv{app: app, database: database, repos: repos, handler: handler, feed: feed}
}

type testResponse struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (response testResponse) object(t *testing.T) map[string]any {
	t.Helper()
	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(response.body, &decoded), "body: %s", response.body)
	return decoded
}

func (response testResponse) list(t *testing.T) []map[string]any {
	t.Helper()
	decoded := []map[string]any{}
	require.NoError(t, json.Unmarshal(response.body, &decoded), "body: %s", response.body)
	return decoded
}

func (env *testEnv) request(t *testing.T, method string, path string, token string, payload any) testResponse {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	require.NoError(t, err, "%s %s", method, path)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return testResponse{status: response.StatusCode, body: raw, cookies: response.Cookies()}
}

func (env *testEnv) setupOwner(t *testing.T) string {
	t.Helper()
	response := env.request(t, http.MethodPost, "/api/auth/setup", "", map[string]string{
		"email":        "owner@forge.local",
		"password":     "StrongPass1",
		"display_name": "Owner",
	})
	require.Equal(t, http.StatusCreated, response.status, "body: %s", response.body)
	token, ok := response.object(t)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func (env *testEnv) createProject(t *testing.T, token string, finalized string) uint {
	t.Helper()
	response := env.request(t, http.MethodPost, "/api/projects", token, map[string]any{
		"title":            "Storefront",
		"leader":           "Mara",
		"finalized_amount": finalized,
	})
	require.Equal(t, http.StatusCreated, response.status, "body: %s", response.body)
	return uint(response.object(t)["id"].(float64))
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
