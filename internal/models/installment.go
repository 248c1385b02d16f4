package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
	// InstallmentOverdue is never persisted.
	InstallmentOverdue = "overdue"
)

type Installment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	ProjectID   uint            `gorm:"not null;index" json:"project_id"`
	Amount      decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	DueDate     *time.Time      `gorm:"type:date" json:"due_date"`
	PaidDate    *time.Time      `gorm:"type:date" json:"paid_date"`
	Status      string          `gorm:"not null;default:pending" json:"status"`
	Description string          `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (installment Installment) IsPaid() bool {
	return installment.Status == InstallmentPaid
}
