package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpenseDevelopment = "development"
	ExpenseHosting     = "hosting"
	ExpenseMarketing   = "marketing"
	ExpenseTools       = "tools"
	ExpenseSalary      = "salary"
	ExpenseOther       = "other"
	ExpenseLearning    = "learning"
)

var ExpenseCategories = []string{
	ExpenseDevelopment,
	ExpenseHosting,
	ExpenseMarketing,
	ExpenseTools,
	ExpenseSalary,
	ExpenseOther,
	ExpenseLearning,
}

type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	ProjectID   *uint           `gorm:"index" json:"project_id"`
	Category    string          `gorm:"not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Date        time.Time       `gorm:"type:date;not null" json:"date"`
	Description string          `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
