package models

import "time"

type DailyLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uidx_daily_logs_user_date" json:"user_id"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uidx_daily_logs_user_date" json:"date"`
	HoursWorked float64   `gorm:"not null;default:0" json:"hours_worked"`
	WhatShipped string    `gorm:"not null;default:''" json:"what_shipped"`
	Learned     bool      `gorm:"not null;default:false" json:"learned"`
	WroteCode   bool      `gorm:"not null;default:false" json:"wrote_code"`
	Committed   bool      `gorm:"not null;default:false" json:"committed"`
	Deployed    bool      `gorm:"not null;default:false" json:"deployed"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	IsMissed    bool      `gorm:"not null;default:false" json:"is_missed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	DayStateNone      = "none"
	DayStateCompleted = "completed"
	DayStateMissed    = "missed"
)

// State reports the lifecycle state of the row. A row that is neither
// completed nor missed is treated like a day without a row.
func (entry DailyLog) State() string {
	switch {
	case entry.IsCompleted:
		return DayStateCompleted
	case entry.IsMissed:
		return DayStateMissed
	default:
		return DayStateNone
	}
}
