// File: /services/dashboard_service.go
package services

import (
	"context"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

const (
	recentEventsLimit   = 5
	recentRSVPsLimit    = 10
	upcomingEventsLimit = 5
)

type DashboardService struct {
	events     *repositories.EventRepository
	categories *repositories.CategoryRepository
	rsvps      *repositories.RSVPRepository
	now        func() time.Time
}

func NewDashboardService(events *repositories.EventRepository, categories *repositories.CategoryRepository, rsvps *repositories.RSVPRepository) *DashboardService {
	return &DashboardService{
		events:     events,
		categories: categories,
		rsvps:      rsvps,
		now:        time.Now,
	}
}

type AdminDashboard struct {
	TotalEvents     int64          `json:"total_events"`
	TotalCategories int64          `json:"total_categories"`
	TotalRSVPs      int64          `json:"total_rsvps"`
	RecentEvents    []models.Event `json:"recent_events"`
	RecentRSVPs     []models.RSVP  `json:"recent_rsvps"`
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	var (
		d   AdminDashboard
		err error
	)
	if d.TotalEvents, err = s.events.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalCategories, err = s.categories.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalRSVPs, err = s.rsvps.Count(ctx); err != nil {
		return nil, err
	}
	if d.RecentEvents, err = s.events.ListRecent(ctx, recentEventsLimit); err != nil {
		return nil, err
	}
	if d.RecentRSVPs, err = s.rsvps.ListRecent(ctx, recentRSVPsLimit); err != nil {
		return nil, err
	}
	return &d, nil
}

type OrganizerDashboard struct {
	Events            []models.Event `json:"user_events"`
	TotalParticipants int64          `json:"total_participants"`
}

func (s *DashboardService) Organizer(ctx context.Context, user *models.User) (*OrganizerDashboard, error) {
	events, err := s.events.ListByCreator(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.rsvps.CountAttendingForCreator(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &OrganizerDashboard{Events: events, TotalParticipants: total}, nil
}

type ParticipantDashboard struct {
	RSVPs          []models.RSVP  `json:"user_rsvps"`
	UpcomingEvents []models.Event `json:"upcoming_events"`
}

func (s *DashboardService) Participant(ctx context.Context, user *models.User) (*ParticipantDashboard, error) {
	rsvps, err := s.rsvps.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.events.ListUpcoming(ctx, s.now().Format(models.DateLayout), upcomingEventsLimit)
	if err != nil {
		return nil, err
	}
	return &ParticipantDashboard{RSVPs: rsvps, UpcomingEvents: upcoming}, nil
}
