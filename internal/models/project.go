package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ProjectStatusEnquiry   = "enquiry"
	ProjectStatusAdvance   = "advance"
	ProjectStatusDelivered = "delivered"
	ProjectStatusArchived  = "archived"
)

const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

var ProjectStatuses = []string{
	ProjectStatusEnquiry,
	ProjectStatusAdvance,
	ProjectStatusDelivered,
	ProjectStatusArchived,
}

var ProjectPriorities = []string{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

type Project struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	UserID          uint                        `gorm:"not null;index" json:"user_id"`
	Title           string                      `gorm:"not null" json:"title"`
	Leader          string                      `gorm:"not null" json:"leader"`
	Status          string                      `gorm:"not null;default:enquiry" json:"status"`
	Priority        string                      `gorm:"not null;default:medium" json:"priority"`
	Progress        int                         `gorm:"not null;default:0" json:"progress"`
	FinalizedAmount decimal.Decimal             `gorm:"type:text;not null;default:'0'" json:"finalized_amount"`
	AmountReceived  decimal.Decimal             `gorm:"type:text;not null;default:'0'" json:"amount_received"`
	EstimatedHours  float64                     `gorm:"not null;default:0" json:"estimated_hours"`
	ActualHours     float64                     `gorm:"not null;default:0" json:"actual_hours"`
	BookingDate     *time.Time                  `gorm:"type:date" json:"booking_date"`
	Deadline        *time.Time                  `gorm:"type:date" json:"deadline"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	TechStack       datatypes.JSONSlice[string] `json:"tech_stack"`
	Resources       datatypes.JSONSlice[string] `json:"resources"`
	Images          datatypes.JSONSlice[string] `json:"images"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}
