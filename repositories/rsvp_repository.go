// File: /repositories/rsvp_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventhub-api/models"
)

type RSVPRepository struct {
	db *gorm.DB
}

func NewRSVPRepository(db *gorm.DB) *RSVPRepository {
	return &RSVPRepository{db: db}
}

func (r *RSVPRepository) WithTx(tx *gorm.DB) *RSVPRepository {
	return &RSVPRepository{db: tx}
}

func (r *RSVPRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&rsvp).Error
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// Upsert writes the (user, event) row in one statement: an insert, or on a
// unique-key conflict an update of response and notes. Concurrent callers
// always end up sharing a single row.
func (r *RSVPRepository) Upsert(ctx context.Context, userID, eventID string, response models.RSVPResponse, notes string) (*models.RSVP, error) {
	if !response.Valid() {
		return nil, fmt.Errorf("invalid rsvp response %q", response)
	}
	now := time.Now()
	rsvp := models.RSVP{
		UserID:   userID,
		EventID:  eventID,
		Response: response,
		Notes:    notes,
		RSVPDate: now,
	}
	err := r.db.WithContext(ctx).
		Omit("User", "Event").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"response":   response,
				"notes":      notes,
				"updated_at": now,
			}),
		}).
		Create(&rsvp).Error
	if err != nil {
		return nil, err
	}
	// The primary key is not reliably returned on the update path.
	return r.FindByUserAndEvent(ctx, userID, eventID)
}

func (r *RSVPRepository) SetResponse(ctx context.Context, rsvp *models.RSVP, response models.RSVPResponse) error {
	if !response.Valid() {
		return fmt.Errorf("invalid rsvp response %q", response)
	}
	if err := r.db.WithContext(ctx).Model(rsvp).Update("response", response).Error; err != nil {
		return err
	}
	rsvp.Response = response
	return nil
}

func (r *RSVPRepository) ListAttendingByEvent(ctx context.Context, eventID string) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ? AND response = ?", eventID, models.RSVPAttending).
		Order("rsvp_date DESC").
		Find(&rsvps).Error
	return rsvps, err
}

func (r *RSVPRepository) ListByUser(ctx context.Context, userID string) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("rsvp_date DESC").
		Find(&rsvps).Error
	return rsvps, err
}

func (r *RSVPRepository) ListRecent(ctx context.Context, limit int) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Order("rsvp_date DESC").
		Limit(limit).
		Find(&rsvps).Error
	return rsvps, err
}

func (r *RSVPRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RSVP{}).Count(&count).Error
	return count, err
}

// CountAttendingForCreator counts attending RSVPs across events created by userID.
func (r *RSVPRepository) CountAttendingForCreator(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RSVP{}).
		Joins("JOIN events ON events.id = rsvps.event_id").
		Where("events.created_by_id = ? AND rsvps.response = ?", userID, models.RSVPAttending).
		Count(&count).Error
	return count, err
}
