package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/terraincognita07/forgeboard/internal/models"
)

var ErrNoFailureState = errors.New("no discipline failure to resolve")

const (
	ResolutionRecommit      = "recommit"
	ResolutionAcceptFailure = "accept_failure"
)

type StreakLogRepository interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error)
	FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.DailyLog, bool, error)
	UpsertCheckIn(entry *models.DailyLog) error
	InsertMissed(userID uint, day time.Time) (bool, error)
	Recommit(userID uint, ids []uint, through time.Time) (int64, error)
	RecommittedThrough(userID uint) (*time.Time, error)
}

type StreakConfig struct {
	// WindowDays limits the reporting window to the trailing N days;
	// zero means the whole history.
	WindowDays int
	Policy     StreakPolicy
	// Cutoff is the offset from midnight after which a day without a
	// check-in is closed and may be swept as missed.
	Cutoff            time.Duration
	SweepLookbackDays int
}

func DefaultStreakConfig() StreakConfig {
	return StreakConfig{
		WindowDays:        0,
		Policy:            DefaultStreakPolicy(),
		Cutoff:            24 * time.Hour,
		SweepLookbackDays: 7,
	}
}

// FailureState reports whether yesterday and the day before are both missed.
type FailureState struct {
	Triggered bool        `json:"triggered"`
	Days      []time.Time `json:"days"`
	LogIDs    []uint      `json:"-"`
}

type FailureDecision struct {
	Resolution  string       `json:"resolution"`
	DeletedRows int64        `json:"deleted_rows"`
	State       FailureState `json:"state"`
}

type StreakService struct {
	logs     StreakLogRepository
	config   StreakConfig
	location *time.Location
	logger   *slog.Logger
}

func NewStreakService(logs StreakLogRepository, config StreakConfig, location *time.Location) *StreakService {
	if location == nil {
		location = time.UTC
	}
	if config.Cutoff <= 0 || config.Cutoff > 24*time.Hour {
		config.Cutoff = 24 * time.Hour
	}
	if config.SweepLookbackDays <= 0 {
		config.SweepLookbackDays = DefaultStreakConfig().SweepLookbackDays
	}
	return &StreakService{
		logs:     logs,
		config:   config,
		location: location,
		logger:   slog.Default().With("component", "streak"),
	}
}

func (service *StreakService) Stats(userID uint, now time.Time) (StreakStats, error) {
	today, tomorrow := DayRange(now, service.location)
	var fromStart *time.Time
	if service.config.WindowDays > 0 {
		start := today.AddDate(0, 0, -(service.config.WindowDays - 1))
		fromStart = &start
	}

	logs, err := service.logs.ListByUserRange(userID, fromStart, &tomorrow)
	if err != nil {
		return StreakStats{}, classifyStoreError("list daily logs", err)
	}
	return BuildStreakStats(logs, today, service.config.Policy), nil
}

// ListDays returns the stored rows between from and to, both inclusive
// calendar days. Nil bounds are open.
func (service *StreakService) ListDays(userID uint, from *time.Time, to *time.Time) ([]models.DailyLog, error) {
	var fromStart, toEnd *time.Time
	if from != nil {
		start := DateAtLocation(*from, service.location)
		fromStart = &start
	}
	if to != nil {
		_, end := DayRange(*to, service.location)
		toEnd = &end
	}
	logs, err := service.logs.ListByUserRange(userID, fromStart, toEnd)
	if err != nil {
		return nil, classifyStoreError("list daily logs", err)
	}
	return logs, nil
}

// SubmitCheckIn records a completed day. A day accepts check-ins until its
// cutoff passes; a day already marked missed stays missed.
func (service *StreakService) SubmitCheckIn(userID uint, day time.Time, input CheckInInput, now time.Time) (models.DailyLog, error) {
	normalized, err := NormalizeCheckInInput(input)
	if err != nil {
		return models.DailyLog{}, err
	}

	dayStart, dayEnd := DayRange(day, service.location)
	today := DateAtLocation(now, service.location)
	if dayStart.After(today) {
		return models.DailyLog{}, invalid("date", "future day")
	}
	if service.isClosed(dayStart, now) {
		return models.DailyLog{}, invalid("date", "check-in window closed")
	}

	existing, found, err := service.logs.FindByUserAndDayRange(userID, dayStart, dayEnd)
	if err != nil {
		return models.DailyLog{}, classifyStoreError("load daily log", err)
	}
	if found && existing.IsMissed {
		return models.DailyLog{}, fmt.Errorf("day %s already marked missed: %w", dayKey(dayStart), ErrConflict)
	}

	entry := models.DailyLog{
		UserID:      userID,
		Date:        dayStart,
		HoursWorked: normalized.HoursWorked,
		WhatShipped: normalized.WhatShipped,
		Learned:     normalized.Learned,
		WroteCode:   normalized.WroteCode,
		Committed:   normalized.Committed,
		Deployed:    normalized.Deployed,
		IsCompleted: true,
		IsMissed:    false,
	}
	if err := service.logs.UpsertCheckIn(&entry); err != nil {
		return models.DailyLog{}, classifyStoreError("upsert daily log", err)
	}

	stored, found, err := service.logs.FindByUserAndDayRange(userID, dayStart, dayEnd)
	if err != nil {
		return models.DailyLog{}, classifyStoreError("reload daily log", err)
	}
	if !found {
		return entry, nil
	}
	return stored, nil
}

func (service *StreakService) DetectFailureState(userID uint, now time.Time) (FailureState, error) {
	today := DateAtLocation(now, service.location)
	dayBefore := today.AddDate(0, 0, -2)

	logs, err := service.logs.ListByUserRange(userID, &dayBefore, &today)
	if err != nil {
		return FailureState{}, classifyStoreError("list daily logs", err)
	}

	missed := make(map[string]models.DailyLog, 2)
	for _, entry := range logs {
		if entry.State() == models.DayStateMissed {
			missed[dayKey(entry.Date)] = entry
		}
	}

	state := FailureState{}
	for _, day := range []time.Time{dayBefore, today.AddDate(0, 0, -1)} {
		entry, ok := missed[dayKey(day)]
		if !ok {
			return FailureState{}, nil
		}
		state.Days = append(state.Days, day)
		state.LogIDs = append(state.LogIDs, entry.ID)
	}
	state.Triggered = true
	return state, nil
}

// Resolve applies the user's answer to a discipline failure. Recommit
// deletes the two miss markers and records yesterday as recommitted so the
// sweep does not mark those days again; accepting the failure changes no
// data.
func (service *StreakService) Resolve(userID uint, resolution string, now time.Time) (FailureDecision, error) {
	if resolution != ResolutionRecommit && resolution != ResolutionAcceptFailure {
		return FailureDecision{}, invalid("resolution", "expected recommit or accept_failure")
	}

	state, err := service.DetectFailureState(userID, now)
	if err != nil {
		return FailureDecision{}, err
	}
	if !state.Triggered {
		return FailureDecision{}, ErrNoFailureState
	}

	decision := FailureDecision{Resolution: resolution, State: state}
	if resolution == ResolutionAcceptFailure {
		service.logger.Info("discipline failure accepted", "user_id", userID)
		return decision, nil
	}

	through := state.Days[len(state.Days)-1]
	deleted, err := service.logs.Recommit(userID, state.LogIDs, through)
	if err != nil {
		return FailureDecision{}, classifyStoreError("delete missed days", err)
	}
	decision.DeletedRows = deleted
	service.logger.Info("discipline failure recommitted", "user_id", userID, "deleted_rows", deleted)
	return decision, nil
}

func (service *StreakService) Recommit(userID uint, now time.Time) (FailureDecision, error) {
	return service.Resolve(userID, ResolutionRecommit, now)
}

func (service *StreakService) AcceptFailure(userID uint, now time.Time) (FailureDecision, error) {
	return service.Resolve(userID, ResolutionAcceptFailure, now)
}

// SweepMissedDays marks closed days without a row as missed. It starts no
// earlier than the user's sign-up day, skips days covered by a recommit and
// looks back at most SweepLookbackDays. Existing rows are never touched.
func (service *StreakService) SweepMissedDays(user models.User, now time.Time) (int, error) {
	lastClosed := DateAtLocation(now, service.location)
	if !service.isClosed(lastClosed, now) {
		lastClosed = lastClosed.AddDate(0, 0, -1)
	}

	start := lastClosed.AddDate(0, 0, -(service.config.SweepLookbackDays - 1))
	if !user.CreatedAt.IsZero() {
		if signUp := DateAtLocation(user.CreatedAt, service.location); signUp.After(start) {
			start = signUp
		}
	}
	if start.After(lastClosed) {
		return 0, nil
	}

	through, err := service.logs.RecommittedThrough(user.ID)
	if err != nil {
		return 0, classifyStoreError("load recommit marker", err)
	}
	recommitted := ""
	if through != nil {
		recommitted = dayKey(*through)
	}

	end := lastClosed.AddDate(0, 0, 1)
	logs, err := service.logs.ListByUserRange(user.ID, &start, &end)
	if err != nil {
		return 0, classifyStoreError("list daily logs", err)
	}
	present := make(map[string]struct{}, len(logs))
	for _, entry := range logs {
		present[dayKey(entry.Date)] = struct{}{}
	}

	marked := 0
	for cursor := start; !cursor.After(lastClosed); cursor = cursor.AddDate(0, 0, 1) {
		key := dayKey(cursor)
		if key <= recommitted {
			continue
		}
		if _, ok := present[key]; ok {
			continue
		}
		created, err := service.logs.InsertMissed(user.ID, cursor)
		if err != nil {
			return marked, classifyStoreError("insert missed day", err)
		}
		if created {
			marked++
		}
	}
	if marked > 0 {
		service.logger.Info("missed days swept", "user_id", user.ID, "marked", marked)
	}
	return marked, nil
}

func (service *StreakService) isClosed(dayStart time.Time, now time.Time) bool {
	return !now.Before(dayStart.Add(service.config.Cutoff))
}
