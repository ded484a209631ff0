// File: /models/category.go
package models

import "time"

type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;size:191"`
	Name        string    `json:"name" gorm:"not null;size:100;index"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedByID *string   `json:"created_by_id" gorm:"size:191"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CreatedBy *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}
