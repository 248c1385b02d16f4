package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/forgeboard/internal/models"
)

type credentialsPayload struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"display_name" form:"display_name"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (handler *Handler) SetupStatus(c *fiber.Ctx) error {
	needsSetup, err := handler.auth.NeedsSetup()
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"needs_setup": needsSetup})
}

// Setup creates the single owner account on first launch.
func (handler *Handler) Setup(c *fiber.Ctx) error {
	payload := credentialsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.BootstrapOwner(payload.Email, payload.Password, payload.DisplayName)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.startSession(c, &user, fiber.StatusCreated)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	payload := credentialsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, payload.Email)
	if handler.loginLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.auth.Authenticate(payload.Email, payload.Password)
	if err != nil {
		handler.loginLimiter.addFailure(limiterKey, now)
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)
	return handler.startSession(c, &user, fiber.StatusOK)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(user)
}

func (handler *Handler) startSession(c *fiber.Ctx, user *models.User, status int) error {
	token, expiresAt, err := handler.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  expiresAt,
	})
	return c.Status(status).JSON(sessionResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
