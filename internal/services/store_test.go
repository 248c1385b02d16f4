package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/models"
)

func openTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "forgeboard-services.db"))
	require.NoError(t, err, "open sqlite")
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db.NewRepositories(database, nil)
}

func createOwner(t *testing.T, repos *db.Repositories, email string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         models.RoleOwner,
		CreatedAt:    time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.Users.Create(&user))
	return user
}

func createProject(t *testing.T, repos *db.Repositories, userID uint, finalized string) models.Project {
	t.Helper()
	project := models.Project{
		UserID:          userID,
		Title:           "Storefront",
		Leader:          "Mara",
		Status:          models.ProjectStatusAdvance,
		Priority:        models.PriorityHigh,
		FinalizedAmount: decimal.RequireFromString(finalized),
		AmountReceived:  decimal.Zero,
	}
	require.NoError(t, repos.Projects.Create(&project))
	return project
}

func money(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}
