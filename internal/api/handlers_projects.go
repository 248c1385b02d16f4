package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/models"
	"github.com/terraincognita07/forgeboard/internal/services"
)

type projectPayload struct {
	Title           *string          `json:"title"`
	Leader          *string          `json:"leader"`
	Status          *string          `json:"status"`
	Priority        *string          `json:"priority"`
	Progress        *int             `json:"progress"`
	FinalizedAmount *decimal.Decimal `json:"finalized_amount"`
	EstimatedHours  *float64         `json:"estimated_hours"`
	ActualHours     *float64         `json:"actual_hours"`
	BookingDate     *string          `json:"booking_date"`
	Deadline        *string          `json:"deadline"`
	Tags            []string         `json:"tags"`
	TechStack       []string         `json:"tech_stack"`
	Resources       []string         `json:"resources"`
	Images          []string         `json:"images"`
}

type projectView struct {
	models.Project
	PaymentProgress float64 `json:"payment_progress"`
	FullyPaid       bool    `json:"fully_paid"`
}

func newProjectView(project models.Project) projectView {
	return projectView{
		Project:         project,
		PaymentProgress: services.PaymentProgress(project),
		FullyPaid:       services.IsFullyPaid(project),
	}
}

func (handler *Handler) projectInput(c *fiber.Ctx) (services.ProjectInput, error) {
	payload := projectPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return services.ProjectInput{}, fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	bookingDate, err := handler.parseOptionalDay(payload.BookingDate)
	if err != nil {
		return services.ProjectInput{}, err
	}
	deadline, err := handler.parseOptionalDay(payload.Deadline)
	if err != nil {
		return services.ProjectInput{}, err
	}

	return services.ProjectInput{
		Title:           payload.Title,
		Leader:          payload.Leader,
		Status:          payload.Status,
		Priority:        payload.Priority,
		Progress:        payload.Progress,
		FinalizedAmount: payload.FinalizedAmount,
		EstimatedHours:  payload.EstimatedHours,
		ActualHours:     payload.ActualHours,
		BookingDate:     bookingDate,
		Deadline:        deadline,
		Tags:            payload.Tags,
		TechStack:       payload.TechStack,
		Resources:       payload.Resources,
		Images:          payload.Images,
	}, nil
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projects, err := handler.projects.List(user.ID, c.Query("status"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	views := make([]projectView, 0, len(projects))
	for _, project := range projects {
		views = append(views, newProjectView(project))
	}
	return c.JSON(views)
}

func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input, err := handler.projectInput(c)
	if err != nil {
		return handler.respondInputError(c, err)
	}
	project, err := handler.projects.Create(user.ID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProjectView(project))
}

func (handler *Handler) GetProject(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	project, err := handler.projects.Get(user.ID, projectID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newProjectView(project))
}

func (handler *Handler) UpdateProject(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	input, err := handler.projectInput(c)
	if err != nil {
		return handler.respondInputError(c, err)
	}
	project, err := handler.projects.Update(user.ID, projectID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newProjectView(project))
}

func (handler *Handler) DeleteProject(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.projects.Delete(user.ID, projectID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) RecomputeProject(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	received, err := handler.ledger.RecomputeProjectReceived(user.ID, projectID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"project_id": projectID, "amount_received": received})
}
