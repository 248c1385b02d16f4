package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/services"
)

type expensePayload struct {
	ProjectID   *uint            `json:"project_id"`
	Category    string           `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
}

func (handler *Handler) ListExpenses(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	from, err := handler.parseOptionalDayQuery(c, "from")
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	to, err := handler.parseOptionalDayQuery(c, "to")
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	expenses, err := handler.expenses.List(user.ID, from, to)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"expenses":    expenses,
		"by_category": services.TotalsByCategory(expenses),
	})
}

func (handler *Handler) CreateExpense(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	payload := expensePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if payload.Amount == nil {
		return handler.respondServiceError(c, &services.ValidationError{Field: "amount", Rule: "required"})
	}

	date := handler.currentTime()
	if payload.Date != "" {
		parsed, err := services.ParseDay(payload.Date, handler.location)
		if err != nil {
			return handler.respondServiceError(c, err)
		}
		date = parsed
	}

	expense, err := handler.expenses.Create(user.ID, services.ExpenseInput{
		ProjectID:   payload.ProjectID,
		Category:    payload.Category,
		Amount:      *payload.Amount,
		Date:        date,
		Description: payload.Description,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(expense)
}

func (handler *Handler) DeleteExpense(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	expenseID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.expenses.Delete(user.ID, expenseID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
