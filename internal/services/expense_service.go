package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/models"
)

type ExpenseRepository interface {
	Create(expense *models.Expense) error
	FindByUser(userID uint, expenseID uint) (models.Expense, error)
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.Expense, error)
	Delete(expense models.Expense) error
}

type ExpenseProjectReader interface {
	FindByUser(userID uint, projectID uint) (models.Project, error)
}

type ExpenseInput struct {
	ProjectID   *uint
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

type ExpenseService struct {
	expenses ExpenseRepository
	projects ExpenseProjectReader
	location *time.Location
}

func NewExpenseService(expenses ExpenseRepository, projects ExpenseProjectReader, location *time.Location) *ExpenseService {
	if location == nil {
		location = time.UTC
	}
	return &ExpenseService{expenses: expenses, projects: projects, location: location}
}

// NormalizeExpenseCategory maps input onto a known category. The legacy
// "bike" bucket is folded into "other".
func NormalizeExpenseCategory(raw string) (string, error) {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "bike" || category == "bike/other" {
		return models.ExpenseOther, nil
	}
	for _, known := range models.ExpenseCategories {
		if category == known {
			return category, nil
		}
	}
	return "", invalid("category", "unknown category")
}

func (service *ExpenseService) Create(userID uint, input ExpenseInput) (models.Expense, error) {
	category, err := NormalizeExpenseCategory(input.Category)
	if err != nil {
		return models.Expense{}, err
	}
	amount, err := RequirePositiveMoney("amount", input.Amount)
	if err != nil {
		return models.Expense{}, err
	}
	if input.Date.IsZero() {
		return models.Expense{}, invalid("date", "required")
	}
	if input.ProjectID != nil {
		if _, err := service.projects.FindByUser(userID, *input.ProjectID); err != nil {
			return models.Expense{}, classifyStoreError("load project", err)
		}
	}

	expense := models.Expense{
		UserID:      userID,
		ProjectID:   input.ProjectID,
		Category:    category,
		Amount:      amount,
		Date:        DateAtLocation(input.Date, service.location),
		Description: strings.TrimSpace(input.Description),
	}
	if err := service.expenses.Create(&expense); err != nil {
		return models.Expense{}, classifyStoreError("create expense", err)
	}
	return expense, nil
}

func (service *ExpenseService) List(userID uint, from *time.Time, to *time.Time) ([]models.Expense, error) {
	var fromStart, toEnd *time.Time
	if from != nil {
		start, _ := DayRange(*from, service.location)
		fromStart = &start
	}
	if to != nil {
		_, end := DayRange(*to, service.location)
		toEnd = &end
	}
	expenses, err := service.expenses.ListByUserRange(userID, fromStart, toEnd)
	if err != nil {
		return nil, classifyStoreError("list expenses", err)
	}
	return expenses, nil
}

func (service *ExpenseService) Delete(userID uint, expenseID uint) error {
	expense, err := service.expenses.FindByUser(userID, expenseID)
	if err != nil {
		return classifyStoreError("load expense", err)
	}
	return classifyStoreError("delete expense", service.expenses.Delete(expense))
}

func TotalsByCategory(expenses []models.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(models.ExpenseCategories))
	for _, category := range models.ExpenseCategories {
		totals[category] = decimal.Zero
	}
	for _, expense := range expenses {
		totals[expense.Category] = totals[expense.Category].Add(expense.Amount)
	}
	return totals
}
