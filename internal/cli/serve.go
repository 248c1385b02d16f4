package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/forgeboard/internal/api"
	"github.com/terraincognita07/forgeboard/internal/config"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/security"
	"github.com/terraincognita07/forgeboard/internal/services"
	"gorm.io/gorm"
)

const (
	changeFeedBuffer = 64
	shutdownTimeout  = 10 * time.Second
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API and the missed-day sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

type application struct {
	app     *fiber.App
	sweeper *services.MissSweeper
}

func newApplication(cfg *config.Config, database *gorm.DB) (*application, error) {
	location := cfg.Location()
	feed := db.NewChangeFeed(changeFeedBuffer)
	repos := db.NewRepositories(database, feed)

	secret := []byte(cfg.Auth.SecretKey)
	if len(secret) == 0 {
		generated, err := security.SecretKey()
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		secret = generated
		slog.Warn("auth.secret_key not set, sessions will not survive a restart")
	}
	tokens, err := security.NewTokenIssuer(secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	streaks := services.NewStreakService(repos.DailyLogs, cfg.StreakServiceConfig(), location)
	handler, err := api.NewHandler(api.Dependencies{
		Auth:         services.NewAuthService(repos.Users),
		Projects:     services.NewProjectService(repos.Projects, location),
		Ledger:       services.NewLedgerService(repos.Projects, repos.Installments, location),
		Expenses:     services.NewExpenseService(repos.Expenses, repos.Projects, location),
		Streaks:      streaks,
		Summary:      services.NewSummaryService(repos.Projects, repos.Installments, repos.Expenses, streaks, location),
		Tokens:       tokens,
		Feed:         feed,
		Location:     location,
		CookieSecure: cfg.Server.CookieSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "forgeboard",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	api.RegisterRoutes(app, handler)

	return &application{
		app:     app,
		sweeper: services.NewMissSweeper(repos.Users, streaks, cfg.Streak.SweepInterval),
	}, nil
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, database, closeDatabase, err := loadEnvironment(opts)
	if err != nil {
		return err
	}
	defer closeDatabase()

	server, err := newApplication(cfg, database)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	server.sweeper.Start(sigCtx)

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("forgeboard listening",
		"addr", "0.0.0.0:"+cfg.Server.Port,
		"db", cfg.Database.Path,
		"tz", cfg.Location().String(),
	)
	if err := server.app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
