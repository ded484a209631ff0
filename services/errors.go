// File: /services/errors.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrAuthentication   = errors.New("invalid username or password")
	ErrAuthorization    = errors.New("you do not have permission to access this page")
	ErrNotActivated     = errors.New("account is not activated")
	ErrNotFound         = errors.New("not found")
	ErrNothingToCancel  = fmt.Errorf("no RSVP found to cancel: %w", ErrNotFound)
	ErrCapacityExceeded = errors.New("this event is full and cannot accept more participants")
	ErrDuplicate        = errors.New("already exists")
	ErrNotification     = errors.New("notification could not be delivered")
	ErrValidation       = errors.New("validation failed")
)

// notFound maps gorm's missing-record error onto ErrNotFound and leaves
// everything else untouched.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
