package models

import "time"

const RoleOwner = "owner"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DisplayName  string    `gorm:"not null;default:''" json:"display_name"`
	Role         string    `gorm:"not null;default:owner" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	// Last calendar day covered by a recommit; the missed-day sweep never
	// reaches back to or before it.
	RecommittedThrough *time.Time `gorm:"type:date" json:"recommitted_through,omitempty"`
}
