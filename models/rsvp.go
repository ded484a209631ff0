// File: /models/rsvp.go
package models

import (
	"time"
)

type RSVPResponse string

const (
	RSVPAttending    RSVPResponse = "attending"
	RSVPNotAttending RSVPResponse = "not_attending"
	RSVPMaybe        RSVPResponse = "maybe"
)

func (r RSVPResponse) Valid() bool {
	switch r {
	case RSVPAttending, RSVPNotAttending, RSVPMaybe:
		return true
	}
	return false
}

// RSVP is unique per (user, event). Cancelling flips Response instead of
// deleting the row.
type RSVP struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	UserID    string       `json:"user_id" gorm:"not null;size:191;uniqueIndex:idx_rsvps_user_event"`
	EventID   string       `json:"event_id" gorm:"not null;size:191;uniqueIndex:idx_rsvps_user_event;index:idx_rsvps_event_response"`
	Response  RSVPResponse `json:"response" gorm:"type:varchar(20);not null;default:'attending';index:idx_rsvps_event_response"`
	Notes     string       `json:"notes" gorm:"type:text"`
	RSVPDate  time.Time    `json:"rsvp_date" gorm:"column:rsvp_date;not null;index"`
	UpdatedAt time.Time    `json:"updated_at"`

	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Event *Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}
