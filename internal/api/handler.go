package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/security"
	"github.com/terraincognita07/forgeboard/internal/services"
)

type Dependencies struct {
	Auth         *services.AuthService
	Projects     *services.ProjectService
	Ledger       *services.LedgerService
	Expenses     *services.ExpenseService
	Streaks      *services.StreakService
	Summary      *services.SummaryService
	Tokens       *security.TokenIssuer
	Feed         *db.ChangeFeed
	Location     *time.Location
	CookieSecure bool
}

type Handler struct {
	auth         *services.AuthService
	projects     *services.ProjectService
	ledger       *services.LedgerService
	expenses     *services.ExpenseService
	streaks      *services.StreakService
	summary      *services.SummaryService
	tokens       *security.TokenIssuer
	feed         *db.ChangeFeed
	location     *time.Location
	cookieSecure bool
	loginLimiter *attemptLimiter
	now          func() time.Time
	logger       *slog.Logger
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Auth == nil || deps.Ledger == nil || deps.Streaks == nil || deps.Tokens == nil {
		return nil, errors.New("api handler: auth, ledger, streak services and token issuer are required")
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	feed := deps.Feed
	if feed == nil {
		feed = db.NewChangeFeed(0)
	}

	return &Handler{
		auth:         deps.Auth,
		projects:     deps.Projects,
		ledger:       deps.Ledger,
		expenses:     deps.Expenses,
		streaks:      deps.Streaks,
		summary:      deps.Summary,
		tokens:       deps.Tokens,
		feed:         feed,
		location:     location,
		cookieSecure: deps.CookieSecure,
		loginLimiter: newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
		now:          time.Now,
		logger:       slog.Default().With("component", "api"),
	}, nil
}

func (handler *Handler) currentTime() time.Time {
	return handler.now().In(handler.location)
}
