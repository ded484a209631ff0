// File: /repositories/event_repository.go
package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventhub-api/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit("Category", "CreatedBy").Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("CreatedBy").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate locks the event row until the surrounding transaction
// ends. SQLite has no row locks; there the single connection serialises
// writers instead.
func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("date DESC").Order("time DESC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) ListByCreator(ctx context.Context, userID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

// ListUpcoming returns events on or after fromDate (YYYY-MM-DD), soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context, fromDate string, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("date >= ?", fromDate).
		Order("date ASC").Order("time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) ListRecent(ctx context.Context, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(event).Updates(updates).Error
}

// Delete removes the event and its RSVPs.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&event, "id = ?", id).Error
		if err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.RSVP{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error
	return count, err
}

func (r *EventRepository) AttendingCount(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RSVP{}).
		Where("event_id = ? AND response = ?", eventID, models.RSVPAttending).
		Count(&count).Error
	return count, err
}

// AttendingCounts returns attending RSVP counts keyed by event ID. Events
// without attendees are absent from the map.
func (r *EventRepository) AttendingCounts(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID string
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.RSVP{}).
		Select("event_id, COUNT(*) AS total").
		Where("event_id IN ? AND response = ?", eventIDs, models.RSVPAttending).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.EventID] = row.Total
	}
	return counts, nil
}
