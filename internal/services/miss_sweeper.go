package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/terraincognita07/forgeboard/internal/models"
)

type SweepOwnerLister interface {
	ListOwners() ([]models.User, error)
}

type MissSweepResult struct {
	Users  int
	Marked int
	Failed int
}

// MissSweeper closes past days for every owner on a fixed interval so that
// streak numbers stay correct even when nobody opens the dashboard.
type MissSweeper struct {
	users    SweepOwnerLister
	streaks  *StreakService
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewMissSweeper(users SweepOwnerLister, streaks *StreakService, interval time.Duration) *MissSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MissSweeper{
		users:    users,
		streaks:  streaks,
		interval: interval,
		now:      time.Now,
		logger:   slog.Default().With("component", "miss_sweeper"),
	}
}

func (sweeper *MissSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	go func() {
		defer ticker.Stop()

		sweeper.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweeper.RunOnce(ctx)
			}
		}
	}()
}

func (sweeper *MissSweeper) RunOnce(ctx context.Context) MissSweepResult {
	result := MissSweepResult{}
	owners, err := sweeper.users.ListOwners()
	if err != nil {
		sweeper.logger.Error("fetch owners failed", "error", err)
		result.Failed++
		return result
	}

	now := sweeper.now()
	for _, owner := range owners {
		if ctx.Err() != nil {
			return result
		}
		result.Users++
		marked, err := sweeper.streaks.SweepMissedDays(owner, now)
		result.Marked += marked
		if err != nil {
			result.Failed++
			sweeper.logger.Error("sweep failed", "user_id", owner.ID, "error", err)
		}
	}
	return result
}
