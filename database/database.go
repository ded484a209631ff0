// File: /database/database.go
package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventhub-api/models"
)

func Initialize(driver, databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "mysql":
		dialector = mysql.Open(databaseURL)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// SQLite has a single writer; one connection serialises transactions
		// instead of failing them with "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// OpenInMemory opens a private in-memory SQLite database, migrated and with
// the role groups seeded. name keeps parallel tests apart.
func OpenInMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := Initialize("sqlite", dsn, logger.Silent)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedRoles(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Group{},
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Event{},
		&models.RSVP{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedRoles makes sure a group exists for every role.
func SeedRoles(db *gorm.DB) error {
	for _, role := range models.RolesByPriority {
		group := models.Group{Name: role.String()}
		if err := db.Where(models.Group{Name: group.Name}).FirstOrCreate(&group).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role, err)
		}
	}
	return nil
}

// AdminSeed describes the superuser created on first start.
type AdminSeed struct {
	Username     string
	Email        string
	PasswordHash string
}

// SeedAdmin creates an active superuser in the Admin group unless a user
// with that username already exists.
func SeedAdmin(db *gorm.DB, seed AdminSeed, log *logrus.Entry) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", seed.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debugf("admin user %s already exists, skipping seed", seed.Username)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			ID:          uuid.NewString(),
			Username:    seed.Username,
			Email:       seed.Email,
			Password:    seed.PasswordHash,
			IsActive:    true,
			IsSuperuser: true,
		}
		if err := tx.Omit("Groups", "Profile").Create(&admin).Error; err != nil {
			return err
		}

		var group models.Group
		if err := tx.Where(models.Group{Name: models.RoleAdmin.String()}).FirstOrCreate(&group).Error; err != nil {
			return err
		}
		if err := tx.Model(&admin).Association("Groups").Append(&group); err != nil {
			return err
		}

		profile := models.NewProfile(admin.ID)
		profile.IsActivated = true
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		log.Infof("created admin user %s", seed.Username)
		return nil
	})
}
