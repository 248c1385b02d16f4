package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/forgeboard/internal/models"
)

func validCheckIn() map[string]any {
	return map[string]any{
		"hours_worked": 4,
		"what_shipped": "invoice export",
		"committed":    true,
	}
}

func (env *testEnv) ownerID(t *testing.T, token string) uint {
	t.Helper()
	response := env.request(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, response.status)
	return uint(response.object(t)["id"].(float64))
}

func TestCheckInUpdatesStreak(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)

	short := validCheckIn()
	short["hours_worked"] = 2.9
	rejected := env.request(t, http.MethodPost, "/api/days/2026-05-20/check-in", token, short)
	require.Equal(t, http.StatusBadRequest, rejected.status)
	assert.Equal(t, "hours_worked", rejected.object(t)["field"])

	deployedOnly := map[string]any{"hours_worked": 5, "what_shipped": "release", "deployed": true}
	rejected = env.request(t, http.MethodPost, "/api/days/2026-05-20/check-in", token, deployedOnly)
	require.Equal(t, http.StatusBadRequest, rejected.status)
	assert.Equal(t, "activities", rejected.object(t)["field"])

	accepted := env.request(t, http.MethodPost, "/api/days/2026-05-20/check-in", token, validCheckIn())
	require.Equal(t, http.StatusOK, accepted.status, "body: %s", accepted.body)
	body := accepted.object(t)
	assert.Equal(t, true, body["is_completed"])
	assert.Equal(t, false, body["is_missed"])

	streak := env.request(t, http.MethodGet, "/api/streak", token, nil)
	require.Equal(t, http.StatusOK, streak.status)
	stats := streak.object(t)
	assert.EqualValues(t, 1, stats["current_streak"])
	assert.EqualValues(t, 4, stats["total_hours_logged"])

	days := env.request(t, http.MethodGet, "/api/days?from=2026-05-01&to=2026-05-31", token, nil)
	require.Equal(t, http.StatusOK, days.status)
	assert.Len(t, days.list(t), 1)
}

func TestCheckInRejectsFutureAndInvalidDates(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)

	future := env.request(t, http.MethodPost, "/api/days/2026-05-21/check-in", token, validCheckIn())
	require.Equal(t, http.StatusBadRequest, future.status)
	assert.Equal(t, "date", future.object(t)["field"])

	garbage := env.request(t, http.MethodPost, "/api/days/yesterday/check-in", token, validCheckIn())
	assert.Equal(t, http.StatusBadRequest, garbage.status)
}

func TestCheckInRejectsOverlongShippedText(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)

	long := validCheckIn()
	long["what_shipped"] = strings.Repeat("ü", 2001)
	rejected := env.request(t, http.MethodPost, "/api/days/2026-05-20/check-in", token, long)
	require.Equal(t, http.StatusBadRequest, rejected.status)
	assert.Equal(t, "what_shipped", rejected.object(t)["field"])

	long["what_shipped"] = strings.Repeat("ü", 2000)
	accepted := env.request(t, http.MethodPost, "/api/days/2026-05-20/check-in", token, long)
	require.Equal(t, http.StatusOK, accepted.status, "body: %s", accepted.body)
	assert.Equal(t, long["what_shipped"], accepted.object(t)["what_shipped"])
}

func TestFailureStateRecommit(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)
	userID := env.ownerID(t, token)
	signUp := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, env.database.Model(&models.User{}).Where("id = ?", userID).Update("created_at", signUp).Error)

	for _, day := range []time.Time{
		time.Date(2026, time.May, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.May, 19, 0, 0, 0, 0, time.UTC),
	} {
		created, err := env.repos.DailyLogs.InsertMissed(userID, day)
		require.NoError(t, err)
		require.True(t, created)
	}

	state := env.request(t, http.MethodGet, "/api/streak/failure", token, nil)
	require.Equal(t, http.StatusOK, state.status)
	assert.Equal(t, true, state.object(t)["triggered"])

	missedCheckIn := env.request(t, http.MethodPost, "/api/days/2026-05-19/check-in", token, validCheckIn())
	assert.Equal(t, http.StatusBadRequest, missedCheckIn.status)

	accepted := env.request(t, http.MethodPost, "/api/streak/failure/accept", token, nil)
	require.Equal(t, http.StatusOK, accepted.status)
	assert.Equal(t, "accept_failure", accepted.object(t)["resolution"])

	recommitted := env.request(t, http.MethodPost, "/api/streak/failure/recommit", token, nil)
	require.Equal(t, http.StatusOK, recommitted.status, "body: %s", recommitted.body)
	decision := recommitted.object(t)
	assert.Equal(t, "recommit", decision["resolution"])
	assert.EqualValues(t, 2, decision["deleted_rows"])

	again := env.request(t, http.MethodPost, "/api/streak/failure/recommit", token, nil)
	assert.Equal(t, http.StatusConflict, again.status)

	// Both reads sweep closed days; the recommitted pair stays cleared.
	stats := env.request(t, http.MethodGet, "/api/streak", token, nil).object(t)
	assert.EqualValues(t, 5, stats["total_missed_days"])

	state = env.request(t, http.MethodGet, "/api/streak/failure", token, nil)
	require.Equal(t, http.StatusOK, state.status)
	assert.Equal(t, false, state.object(t)["triggered"])

	days := env.request(t, http.MethodGet, "/api/days?from=2026-05-01&to=2026-05-31", token, nil)
	require.Equal(t, http.StatusOK, days.status)
	listed := days.list(t)
	require.Len(t, listed, 5)
	for _, entry := range listed {
		date, _ := entry["date"].(string)
		assert.NotContains(t, date, "2026-05-18")
		assert.NotContains(t, date, "2026-05-19")
	}
}
