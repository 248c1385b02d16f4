package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/terraincognita07/forgeboard/internal/models"
)

var streakToday = time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)

func completedDay(offset int, hours float64) models.DailyLog {
	return models.DailyLog{
		Date:        streakToday.AddDate(0, 0, offset),
		HoursWorked: hours,
		WhatShipped: "shipped",
		Committed:   true,
		IsCompleted: true,
	}
}

func missedDay(offset int) models.DailyLog {
	return models.DailyLog{Date: streakToday.AddDate(0, 0, offset), IsMissed: true}
}

func TestBuildStreakStatsMixedHistory(t *testing.T) {
	logs := []models.DailyLog{
		completedDay(-4, 4),
		completedDay(-3, 4),
		missedDay(-2),
		completedDay(-1, 4),
		completedDay(0, 4),
	}

	stats := BuildStreakStats(logs, streakToday, DefaultStreakPolicy())

	assert.Equal(t, StreakStats{
		CurrentStreak:     2,
		LongestStreak:     2,
		TotalMissedDays:   1,
		TotalDaysExecuted: 4,
		TotalHoursLogged:  16,
		ExecutionRate:     80.0,
	}, stats)
}

func TestBuildStreakStatsTodayPendingKeepsStreak(t *testing.T) {
	logs := []models.DailyLog{
		completedDay(-3, 3),
		completedDay(-2, 3.5),
		completedDay(-1, 5),
	}

	stats := BuildStreakStats(logs, streakToday, DefaultStreakPolicy())
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)
	assert.InDelta(t, 11.5, stats.TotalHoursLogged, 0.0001)
	assert.Equal(t, 100.0, stats.ExecutionRate)
}

func TestBuildStreakStatsMissedTodayBreaksStreak(t *testing.T) {
	logs := []models.DailyLog{completedDay(-1, 4), missedDay(0)}

	stats := BuildStreakStats(logs, streakToday, DefaultStreakPolicy())
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)
	assert.Equal(t, 50.0, stats.ExecutionRate)
}

func TestBuildStreakStatsGapPolicy(t *testing.T) {
	logs := []models.DailyLog{
		completedDay(-5, 4),
		completedDay(-4, 4),
		completedDay(-2, 4),
		completedDay(-1, 4),
	}

	strict := BuildStreakStats(logs, streakToday, StreakPolicy{ImplicitMissOnGap: true})
	assert.Equal(t, 2, strict.CurrentStreak)
	assert.Equal(t, 2, strict.LongestStreak)
	assert.Equal(t, 0, strict.TotalMissedDays)

	lenient := BuildStreakStats(logs, streakToday, StreakPolicy{ImplicitMissOnGap: false})
	assert.Equal(t, 4, lenient.CurrentStreak)
	assert.Equal(t, 4, lenient.LongestStreak)
}

func TestBuildStreakStatsIgnoresFutureAndUnknownRows(t *testing.T) {
	logs := []models.DailyLog{
		completedDay(-1, 4),
		completedDay(2, 9),
		{Date: streakToday.AddDate(0, 0, -2)},
	}

	stats := BuildStreakStats(logs, streakToday, StreakPolicy{ImplicitMissOnGap: false})
	assert.Equal(t, 1, stats.TotalDaysExecuted)
	assert.Equal(t, 0, stats.TotalMissedDays)
	assert.InDelta(t, 4.0, stats.TotalHoursLogged, 0.0001)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestBuildStreakStatsEmpty(t *testing.T) {
	assert.Equal(t, StreakStats{}, BuildStreakStats(nil, streakToday, DefaultStreakPolicy()))
}

func TestExecutionRateRounding(t *testing.T) {
	assert.Equal(t, 0.0, ExecutionRate(0, 0))
	assert.Equal(t, 66.7, ExecutionRate(2, 1))
	assert.Equal(t, 33.3, ExecutionRate(1, 2))
	assert.Equal(t, 0.0, ExecutionRate(0, 4))
}
