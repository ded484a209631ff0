// File: /models/profile.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile tracks email activation. Exactly one exists per user and the
// activation token never changes after creation.
type Profile struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          string    `json:"user_id" gorm:"uniqueIndex;not null;size:191"`
	IsActivated     bool      `json:"is_activated" gorm:"not null;default:false"`
	ActivationToken string    `json:"-" gorm:"uniqueIndex;not null;size:36"`
	CreatedAt       time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:          userID,
		ActivationToken: uuid.NewString(),
	}
}
