package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/setup-status", handler.SetupStatus)
	auth.Post("/setup", handler.Setup)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	projects := api.Group("/projects", handler.AuthRequired)
	projects.Get("", handler.ListProjects)
	projects.Post("", handler.CreateProject)
	projects.Get("/:id", handler.GetProject)
	projects.Patch("/:id", handler.UpdateProject)
	projects.Delete("/:id", handler.DeleteProject)
	projects.Post("/:id/recompute", handler.RecomputeProject)
	projects.Get("/:id/installments", handler.ListInstallments)
	projects.Post("/:id/installments", handler.AddInstallment)

	installments := api.Group("/installments", handler.AuthRequired)
	installments.Post("/:id/pay", handler.PayInstallment)
	installments.Post("/:id/unpay", handler.UnpayInstallment)
	installments.Delete("/:id", handler.DeleteInstallment)

	expenses := api.Group("/expenses", handler.AuthRequired)
	expenses.Get("", handler.ListExpenses)
	expenses.Post("", handler.CreateExpense)
	expenses.Delete("/:id", handler.DeleteExpense)

	days := api.Group("/days", handler.AuthRequired)
	days.Get("", handler.ListDays)
	days.Post("/:date/check-in", handler.CheckIn)

	streak := api.Group("/streak", handler.AuthRequired)
	streak.Get("", handler.GetStreak)
	streak.Get("/failure", handler.GetFailureState)
	streak.Post("/failure/recommit", handler.Recommit)
	streak.Post("/failure/accept", handler.AcceptFailure)

	api.Get("/summary", handler.AuthRequired, handler.GetSummary)
	api.Get("/changes", handler.AuthRequired, handler.StreamChanges)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
