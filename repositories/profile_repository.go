// File: /repositories/profile_repository.go
package repositories

import (
	"context"

	"gorm.io/gorm"

	"eventhub-api/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

func (r *ProfileRepository) FindByToken(ctx context.Context, token string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("activation_token = ?", token).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// MarkActivated flips the profile flag and the account's active flag. The
// profile update is conditional, so only the first caller sees true; callers
// must run it inside a transaction so the two flags cannot diverge.
func (r *ProfileRepository) MarkActivated(ctx context.Context, profile *models.Profile) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND is_activated = ?", profile.ID, false).
		Update("is_activated", true)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", profile.UserID).
		Update("is_active", true).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
