package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"eventhub-api/database"
	"eventhub-api/logger"
	"eventhub-api/models"
	"eventhub-api/repositories"
)

const testPassword = "Passw0rd!"

type testEnv struct {
	db         *gorm.DB
	users      *repositories.UserRepository
	profiles   *repositories.ProfileRepository
	categories *repositories.CategoryRepository
	events     *repositories.EventRepository
	rsvps      *repositories.RSVPRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		db:         db,
		users:      repositories.NewUserRepository(db),
		profiles:   repositories.NewProfileRepository(db),
		categories: repositories.NewCategoryRepository(db),
		events:     repositories.NewEventRepository(db),
		rsvps:      repositories.NewRSVPRepository(db),
	}
}

// createUser stores an active user holding role.
func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsActive: true,
	}
	profile := models.NewProfile(user.ID)
	profile.IsActivated = true
	require.NoError(t, e.users.Create(context.Background(), user, profile, role))
	return user
}

func (e *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.NewString(), Name: name}
	require.NoError(t, e.categories.Create(context.Background(), category))
	return category
}

// createEvent stores an event; maxParticipants <= 0 means unlimited.
func (e *testEnv) createEvent(t *testing.T, creator *models.User, category *models.Category, maxParticipants int) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:          uuid.NewString(),
		Name:        "Go Meetup",
		Description: "Talks and pizza",
		Date:        "2030-05-01",
		Time:        "18:30",
		Location:    "Hall A",
		CategoryID:  category.ID,
		CreatedByID: &creator.ID,
	}
	if maxParticipants > 0 {
		event.MaxParticipants = &maxParticipants
	}
	require.NoError(t, e.events.Create(context.Background(), event))
	return event
}

// recordingNotifier records confirmations and fails when err is set.
type recordingNotifier struct {
	mutex sync.Mutex
	err   error
	sent  []string
}

func (n *recordingNotifier) SendRSVPConfirmation(_ context.Context, user *models.User, event *models.Event) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, fmt.Sprintf("%s:%s", user.Username, event.ID))
	return nil
}

func (n *recordingNotifier) count() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.sent)
}

func (e *testEnv) rsvpService(notifier Notifier) *RSVPService {
	return NewRSVPService(e.db, e.events, e.rsvps, notifier, logger.Discard())
}

func (e *testEnv) eventService() *EventService {
	return NewEventService(e.db, e.events, e.categories, e.rsvps, logger.Discard())
}

func (e *testEnv) authService(revoked RevocationStore) *AuthService {
	return NewAuthService(e.users, e.profiles, revoked, AuthConfig{
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		PasswordCost: bcrypt.MinCost,
	}, logger.Discard())
}

func testLogger() *logrus.Logger {
	return logger.Discard()
}
