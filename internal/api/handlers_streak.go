package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/forgeboard/internal/services"
)

type checkInPayload struct {
	HoursWorked float64 `json:"hours_worked"`
	WhatShipped string  `json:"what_shipped"`
	Learned     bool    `json:"learned"`
	WroteCode   bool    `json:"wrote_code"`
	Committed   bool    `json:"committed"`
	Deployed    bool    `json:"deployed"`
}

func (handler *Handler) ListDays(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	from, err := handler.parseOptionalDayQuery(c, "from")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	to, err := handler.parseOptionalDayQuery(c, "to")
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	logs, err := handler.streaks.ListDays(user.ID, from, to)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(logs)
}

func (handler *Handler) CheckIn(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	day, err := services.ParseDay(c.Params("date"), handler.location)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	payload := checkInPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	entry, err := handler.streaks.SubmitCheckIn(user.ID, day, services.CheckInInput{
		HoursWorked: payload.HoursWorked,
		WhatShipped: payload.WhatShipped,
		Learned:     payload.Learned,
		WroteCode:   payload.WroteCode,
		Committed:   payload.Committed,
		Deployed:    payload.Deployed,
	}, handler.currentTime())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(entry)
}

// GetStreak closes any finished days before computing the stats so the
// numbers are correct even when the background sweeper has not run yet.
func (handler *Handler) GetStreak(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	now := handler.currentTime()
	if _, err := handler.streaks.SweepMissedDays(*user, now); err != nil {
		return handler.respondServiceError(c, err)
	}
	stats, err := handler.streaks.Stats(user.ID, now)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(stats)
}

func (handler *Handler) GetFailureState(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	now := handler.currentTime()
	if _, err := handler.streaks.SweepMissedDays(*user, now); err != nil {
		return handler.respondServiceError(c, err)
	}
	state, err := handler.streaks.DetectFailureState(user.ID, now)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(state)
}

func (handler *Handler) Recommit(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	decision, err := handler.streaks.Recommit(user.ID, handler.currentTime())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(decision)
}

func (handler *Handler) AcceptFailure(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	decision, err := handler.streaks.AcceptFailure(user.ID, handler.currentTime())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(decision)
}
