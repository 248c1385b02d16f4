package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/forgeboard/internal/models"
)

type StreakStats struct {
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	TotalMissedDays   int     `json:"total_missed_days"`
	TotalDaysExecuted int     `json:"total_days_executed"`
	TotalHoursLogged  float64 `json:"total_hours_logged"`
	ExecutionRate     float64 `json:"execution_rate"`
}

// StreakPolicy holds the rules that are a product decision rather than
// arithmetic.
type StreakPolicy struct {
	// ImplicitMissOnGap treats a past day without a row as a miss when
	// walking streaks. When false such days are skipped.
	ImplicitMissOnGap bool
}

func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{ImplicitMissOnGap: true}
}

// BuildStreakStats derives the stats from one user's logs. today is the
// user's current calendar day; a today without a row is pending and never
// breaks the streak. Rows dated after today are ignored.
func BuildStreakStats(logs []models.DailyLog, today time.Time, policy StreakPolicy) StreakStats {
	stats := StreakStats{}
	todayKey := dayKey(today)

	byDay := make(map[string]models.DailyLog, len(logs))
	sorted := make([]models.DailyLog, 0, len(logs))
	for _, entry := range logs {
		if dayKey(entry.Date) > todayKey {
			continue
		}
		sorted = append(sorted, entry)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, entry := range sorted {
		byDay[dayKey(entry.Date)] = entry
		switch entry.State() {
		case models.DayStateCompleted:
			stats.TotalDaysExecuted++
			stats.TotalHoursLogged += entry.HoursWorked
		case models.DayStateMissed:
			stats.TotalMissedDays++
		}
	}
	stats.TotalHoursLogged = math.Round(stats.TotalHoursLogged*100) / 100
	stats.ExecutionRate = ExecutionRate(stats.TotalDaysExecuted, stats.TotalMissedDays)

	if len(sorted) == 0 {
		return stats
	}

	first := calendarDay(sorted[0].Date)
	last := calendarDay(today)
	stats.CurrentStreak = currentStreak(byDay, first, last, policy)
	stats.LongestStreak = longestStreak(byDay, first, last, policy)
	return stats
}

// ExecutionRate is executed/(executed+missed) as a percentage with one
// decimal, or 0 when nothing was observed.
func ExecutionRate(executed int, missed int) float64 {
	observed := executed + missed
	if observed == 0 {
		return 0
	}
	return math.Round(1000*float64(executed)/float64(observed)) / 10
}

func currentStreak(byDay map[string]models.DailyLog, first time.Time, today time.Time, policy StreakPolicy) int {
	streak := 0
	for cursor := today; !cursor.Before(first); cursor = cursor.AddDate(0, 0, -1) {
		entry, ok := byDay[dayKey(cursor)]
		state := models.DayStateNone
		if ok {
			state = entry.State()
		}

		switch state {
		case models.DayStateCompleted:
			streak++
		case models.DayStateMissed:
			return streak
		default:
			if cursor.Equal(today) {
				continue
			}
			if policy.ImplicitMissOnGap {
				return streak
			}
		}
	}
	return streak
}

func longestStreak(byDay map[string]models.DailyLog, first time.Time, last time.Time, policy StreakPolicy) int {
	longest := 0
	run := 0
	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 0, 1) {
		entry, ok := byDay[dayKey(cursor)]
		state := models.DayStateNone
		if ok {
			state = entry.State()
		}

		switch state {
		case models.DayStateCompleted:
			run++
			if run > longest {
				longest = run
			}
		case models.DayStateMissed:
			run = 0
		default:
			if policy.ImplicitMissOnGap && cursor.Before(last) {
				run = 0
			}
		}
	}
	return longest
}

// calendarDay drops the clock while keeping the date as written, so that
// stored rows and "today" walk the same calendar.
func calendarDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
