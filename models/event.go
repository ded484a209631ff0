// File: /models/event.go
package models

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Event struct {
	ID              string    `json:"id" gorm:"primaryKey;size:191"`
	Name            string    `json:"name" gorm:"not null;size:200"`
	Description     string    `json:"description" gorm:"not null;type:text"`
	Date            string    `json:"date" gorm:"not null;size:10;index"` // YYYY-MM-DD
	Time            string    `json:"time" gorm:"not null;size:5"`        // HH:MM
	Location        string    `json:"location" gorm:"not null;size:200"`
	CategoryID      string    `json:"category_id" gorm:"not null;size:191;index"`
	CreatedByID     *string   `json:"created_by_id" gorm:"size:191;index"`
	MaxParticipants *int      `json:"max_participants"` // nil means unlimited
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Category  *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedBy *User     `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// Capacity is the derived occupancy of an event. AvailableSpots is nil for
// unlimited events.
type Capacity struct {
	RSVPCount      int64  `json:"rsvp_count"`
	IsFull         bool   `json:"is_full"`
	AvailableSpots *int64 `json:"available_spots"`
}

// IsFull reports whether attending RSVPs have reached max_participants.
func (e *Event) IsFull(attending int64) bool {
	if e.MaxParticipants == nil {
		return false
	}
	return attending >= int64(*e.MaxParticipants)
}

func (e *Event) CapacityFor(attending int64) Capacity {
	c := Capacity{
		RSVPCount: attending,
		IsFull:    e.IsFull(attending),
	}
	if e.MaxParticipants != nil {
		spots := int64(*e.MaxParticipants) - attending
		if spots < 0 {
			spots = 0
		}
		c.AvailableSpots = &spots
	}
	return c
}

// IsCreatedBy reports whether userID created the event.
func (e *Event) IsCreatedBy(userID string) bool {
	return e.CreatedByID != nil && *e.CreatedByID == userID
}

// EventWithCapacity is an event paired with its derived occupancy.
type EventWithCapacity struct {
	Event
	Capacity
}
