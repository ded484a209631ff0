// File: /services/rsvp_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

// Notifier sends the RSVP confirmation. EmailService implements it.
type Notifier interface {
	SendRSVPConfirmation(ctx context.Context, user *models.User, event *models.Event) error
}

type RSVPService struct {
	db       *gorm.DB
	events   *repositories.EventRepository
	rsvps    *repositories.RSVPRepository
	notifier Notifier
	log      *logrus.Entry
}

func NewRSVPService(db *gorm.DB, events *repositories.EventRepository, rsvps *repositories.RSVPRepository, notifier Notifier, l *logrus.Logger) *RSVPService {
	return &RSVPService{
		db:       db,
		events:   events,
		rsvps:    rsvps,
		notifier: notifier,
		log:      l.WithField("from", "rsvp-service"),
	}
}

type RSVPResult struct {
	RSVP    *models.RSVP
	Event   *models.Event
	Created bool
	// Warning holds a non-fatal ErrNotification; the RSVP is stored regardless.
	Warning error
}

// Submit records the user as attending. The capacity check and the write
// share one transaction with the event row locked, so concurrent submitters
// cannot overbook. Re-affirming an attending RSVP is allowed at capacity.
func (s *RSVPService) Submit(ctx context.Context, user *models.User, eventID, notes string) (*RSVPResult, error) {
	result := &RSVPResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)
		rsvps := s.rsvps.WithTx(tx)

		event, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event")
		}

		existing, err := rsvps.FindByUserAndEvent(ctx, user.ID, eventID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing == nil || existing.Response != models.RSVPAttending {
			attending, err := events.AttendingCount(ctx, eventID)
			if err != nil {
				return err
			}
			if event.IsFull(attending) {
				return ErrCapacityExceeded
			}
		}

		rsvp, err := rsvps.Upsert(ctx, user.ID, eventID, models.RSVPAttending, notes)
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("rsvp %w", ErrDuplicate)
			}
			return err
		}

		result.RSVP = rsvp
		result.Event = event
		result.Created = existing == nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"event_id": eventID,
		"created":  result.Created,
	}).Info("rsvp recorded")

	if err := s.notifier.SendRSVPConfirmation(ctx, user, result.Event); err != nil {
		result.Warning = err
	}
	return result, nil
}

// Cancel marks the user's RSVP as not attending. The row is kept.
func (s *RSVPService) Cancel(ctx context.Context, user *models.User, eventID string) (*models.RSVP, *models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, notFound(err, "event")
	}

	rsvp, err := s.rsvps.FindByUserAndEvent(ctx, user.ID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event, ErrNothingToCancel
		}
		return nil, event, err
	}

	if err := s.rsvps.SetResponse(ctx, rsvp, models.RSVPNotAttending); err != nil {
		return nil, event, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"event_id": eventID,
	}).Info("rsvp cancelled")
	return rsvp, event, nil
}
