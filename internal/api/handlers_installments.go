package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/services"
)

type installmentPayload struct {
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *string          `json:"due_date"`
	Description string           `json:"description"`
}

func (handler *Handler) ListInstallments(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	views, err := handler.ledger.ListInstallments(user.ID, projectID, handler.currentTime())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(views)
}

func (handler *Handler) AddInstallment(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	payload := installmentPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if payload.Amount == nil {
		return handler.respondServiceError(c, &services.ValidationError{Field: "amount", Rule: "required"})
	}
	dueDate, err := handler.parseOptionalDay(payload.DueDate)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	installment, err := handler.ledger.AddInstallment(user.ID, projectID, services.InstallmentInput{
		Amount:      *payload.Amount,
		DueDate:     dueDate,
		Description: payload.Description,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(installment)
}

func (handler *Handler) PayInstallment(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	installmentID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	outcome, err := handler.ledger.MarkPaid(user.ID, installmentID, handler.currentTime())
	if errors.Is(err, services.ErrAlreadyPaid) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":           "installment already paid",
			"already_paid":    true,
			"amount_received": outcome.AmountReceived,
		})
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(outcome)
}

func (handler *Handler) UnpayInstallment(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	installmentID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	outcome, err := handler.ledger.MarkUnpaid(user.ID, installmentID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(outcome)
}

func (handler *Handler) DeleteInstallment(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	installmentID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	outcome, err := handler.ledger.DeleteInstallment(user.ID, installmentID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(outcome)
}
