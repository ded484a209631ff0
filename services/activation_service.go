// File: /services/activation_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

type ActivationService struct {
	db       *gorm.DB
	profiles *repositories.ProfileRepository
	log      *logrus.Entry
}

func NewActivationService(db *gorm.DB, profiles *repositories.ProfileRepository, l *logrus.Logger) *ActivationService {
	return &ActivationService{
		db:       db,
		profiles: profiles,
		log:      l.WithField("from", "activation-service"),
	}
}

// Activate moves the account owning token from pending to active. It is
// idempotent: a second call reports alreadyActive and writes nothing.
// Unknown or malformed tokens return ErrNotFound.
func (s *ActivationService) Activate(ctx context.Context, token string) (alreadyActive bool, err error) {
	if _, err := uuid.Parse(token); err != nil {
		return false, notFound(gorm.ErrRecordNotFound, "activation token")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.profiles.WithTx(tx)
		profile, err := profiles.FindByToken(ctx, token)
		if err != nil {
			return notFound(err, "activation token")
		}
		if profile.IsActivated && profile.User != nil && profile.User.IsActive {
			alreadyActive = true
			return nil
		}

		activated, err := profiles.MarkActivated(ctx, profile)
		if err != nil {
			return err
		}
		if !activated {
			// Profile was already activated; bring the account flag in line.
			alreadyActive = true
			return tx.Model(&models.User{}).Where("id = ?", profile.UserID).Update("is_active", true).Error
		}
		s.log.WithField("user_id", profile.UserID).Info("account activated")
		return nil
	})
	return alreadyActive, err
}
