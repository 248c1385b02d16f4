package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) GetSummary(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	summary, err := handler.summary.Build(user.ID, handler.currentTime())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(summary)
}
