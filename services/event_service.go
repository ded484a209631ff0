// File: /services/event_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

type EventService struct {
	db         *gorm.DB
	events     *repositories.EventRepository
	categories *repositories.CategoryRepository
	rsvps      *repositories.RSVPRepository
	log        *logrus.Entry
}

func NewEventService(db *gorm.DB, events *repositories.EventRepository, categories *repositories.CategoryRepository, rsvps *repositories.RSVPRepository, l *logrus.Logger) *EventService {
	return &EventService{
		db:         db,
		events:     events,
		categories: categories,
		rsvps:      rsvps,
		log:        l.WithField("from", "event-service"),
	}
}

type EventInput struct {
	Name            string `json:"name" form:"name"`
	Description     string `json:"description" form:"description"`
	Date            string `json:"date" form:"date"`
	Time            string `json:"time" form:"time"`
	Location        string `json:"location" form:"location"`
	CategoryID      string `json:"category_id" form:"category_id"`
	MaxParticipants *int   `json:"max_participants" form:"max_participants"`
}

func (in *EventInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	switch {
	case in.Name == "" || len(in.Name) > 200:
		return validationError("name must be between 1 and 200 characters")
	case strings.TrimSpace(in.Description) == "":
		return validationError("description is required")
	case in.Location == "" || len(in.Location) > 200:
		return validationError("location must be between 1 and 200 characters")
	case in.CategoryID == "":
		return validationError("category is required")
	case in.MaxParticipants != nil && *in.MaxParticipants < 1:
		return validationError("max participants must be at least 1, or empty for unlimited")
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return validationError("date must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(models.TimeLayout, in.Time); err != nil {
		return validationError("time must be formatted as HH:MM")
	}
	return nil
}

func (s *EventService) withCapacity(ctx context.Context, events []models.Event) ([]models.EventWithCapacity, error) {
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	counts, err := s.events.AttendingCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.EventWithCapacity, len(events))
	for i := range events {
		out[i] = models.EventWithCapacity{
			Event:    events[i],
			Capacity: events[i].CapacityFor(counts[events[i].ID]),
		}
	}
	return out, nil
}

func (s *EventService) List(ctx context.Context) ([]models.EventWithCapacity, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCapacity(ctx, events)
}

func (s *EventService) Get(ctx context.Context, id string) (*models.EventWithCapacity, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event")
	}
	attending, err := s.events.AttendingCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.EventWithCapacity{Event: *event, Capacity: event.CapacityFor(attending)}, nil
}

type EventDetail struct {
	Event     *models.EventWithCapacity `json:"event"`
	UserRSVP  *models.RSVP              `json:"user_rsvp"`
	CanRSVP   bool                      `json:"can_rsvp"`
	Attendees []models.RSVP             `json:"rsvp_list"`
}

// Detail builds the event page. viewer may be nil for anonymous requests.
func (s *EventService) Detail(ctx context.Context, id string, viewer *models.User) (*EventDetail, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &EventDetail{Event: event}

	if viewer != nil {
		rsvp, err := s.rsvps.FindByUserAndEvent(ctx, viewer.ID, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		detail.UserRSVP = rsvp
		detail.CanRSVP = !event.Capacity.IsFull && (rsvp == nil || rsvp.Response != models.RSVPAttending)
	}

	detail.Attendees, err = s.rsvps.ListAttendingByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *EventService) Create(ctx context.Context, creator *models.User, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
		return nil, notFound(err, "category")
	}

	event := &models.Event{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		Date:            in.Date,
		Time:            in.Time,
		Location:        in.Location,
		CategoryID:      in.CategoryID,
		CreatedByID:     &creator.ID,
		MaxParticipants: in.MaxParticipants,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"event_id": event.ID, "user_id": creator.ID}).Info("event created")
	return event, nil
}

// authorizeChange allows the event's creator or an admin.
func authorizeChange(actor *models.User, event *models.Event) error {
	if event.IsCreatedBy(actor.ID) || actor.HasRole(models.RoleAdmin) {
		return nil
	}
	return ErrAuthorization
}

// Update runs under the event row lock so a concurrent RSVP cannot slip in
// between the attendance check and the new limit being written.
func (s *EventService) Update(ctx context.Context, actor *models.User, id string, in EventInput) (*models.Event, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)

		event, err := events.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "event")
		}
		if err := authorizeChange(actor, event); err != nil {
			return err
		}
		if err := in.validate(); err != nil {
			return err
		}
		if in.CategoryID != event.CategoryID {
			if _, err := s.categories.WithTx(tx).FindByID(ctx, in.CategoryID); err != nil {
				return notFound(err, "category")
			}
		}
		if in.MaxParticipants != nil {
			attending, err := events.AttendingCount(ctx, id)
			if err != nil {
				return err
			}
			if int64(*in.MaxParticipants) < attending {
				return validationError("cannot reduce max participants below current attendance")
			}
		}

		updates := map[string]interface{}{
			"name":             in.Name,
			"description":      in.Description,
			"date":             in.Date,
			"time":             in.Time,
			"location":         in.Location,
			"category_id":      in.CategoryID,
			"max_participants": in.MaxParticipants,
		}
		return events.Update(ctx, event, updates)
	})
	if err != nil {
		return nil, err
	}
	return s.events.FindByID(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, actor *models.User, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event")
	}
	if err := authorizeChange(actor, event); err != nil {
		return event, err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return event, notFound(err, "event")
	}
	s.log.WithFields(logrus.Fields{"event_id": id, "user_id": actor.ID}).Info("event deleted")
	return event, nil
}

// Participants lists attending RSVPs with their users.
func (s *EventService) Participants(ctx context.Context, id string) (*models.EventWithCapacity, []models.RSVP, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rsvps, err := s.rsvps.ListAttendingByEvent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return event, rsvps, nil
}
