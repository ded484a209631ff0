package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub-api/models"
)

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewCategoryService(env.categories, testLogger())
	admin := env.createUser(t, "ada", models.RoleAdmin)

	_, err := svc.Create(ctx, admin, CategoryInput{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	music, err := svc.Create(ctx, admin, CategoryInput{Name: "Music", Description: "Concerts"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, CategoryInput{Name: "Art"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Art", list[0].Name)

	updated, err := svc.Update(ctx, music.ID, CategoryInput{Name: "Live Music"})
	require.NoError(t, err)
	assert.Equal(t, "Live Music", updated.Name)

	_, err = svc.Update(ctx, "missing", CategoryInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewCategoryService(env.categories, testLogger())
	organizer := env.createUser(t, "olga", models.RoleOrganizer)
	alice := env.createUser(t, "alice", models.RoleParticipant)
	doomed := env.createCategory(t, "Doomed")
	kept := env.createCategory(t, "Kept")
	gone := env.createEvent(t, organizer, doomed, 0)
	stays := env.createEvent(t, organizer, kept, 0)

	rsvps := env.rsvpService(&recordingNotifier{})
	_, err := rsvps.Submit(ctx, alice, gone.ID, "")
	require.NoError(t, err)
	_, err = rsvps.Submit(ctx, alice, stays.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doomed.ID))

	_, err = env.events.FindByID(ctx, gone.ID)
	assert.Error(t, err)
	_, err = env.events.FindByID(ctx, stays.ID)
	assert.NoError(t, err)

	var remaining int64
	require.NoError(t, env.db.Model(&models.RSVP{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	assert.ErrorIs(t, svc.Delete(ctx, doomed.ID), ErrNotFound)
}

func TestDeleteCategoryWhileRSVPsArrive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewCategoryService(env.categories, testLogger())
	organizer := env.createUser(t, "olga", models.RoleOrganizer)
	doomed := env.createCategory(t, "Doomed")
	event := env.createEvent(t, organizer, doomed, 0)
	rsvps := env.rsvpService(&recordingNotifier{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		user := env.createUser(t, fmt.Sprintf("user%d", i), models.RoleParticipant)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rsvps.Submit(ctx, user, event.ID, "")
			if err != nil {
				assert.ErrorIs(t, err, ErrNotFound)
			}
		}()
	}
	require.NoError(t, svc.Delete(ctx, doomed.ID))
	wg.Wait()

	var orphans int64
	require.NoError(t, env.db.Model(&models.RSVP{}).
		Where("event_id NOT IN (?)", env.db.Model(&models.Event{}).Select("id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)

	empty := env.createCategory(t, "Empty")
	assert.NoError(t, svc.Delete(ctx, empty.ID))
}
