package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub-api/models"
)

// stubQueue answers every Enqueue with a preset outcome.
type stubQueue struct {
	enqueueErr error
	result     error
	hang       bool
	messages   []Message
}

func (q *stubQueue) Enqueue(msg Message) (<-chan error, error) {
	if q.enqueueErr != nil {
		return nil, q.enqueueErr
	}
	q.messages = append(q.messages, msg)
	done := make(chan error, 1)
	if !q.hang {
		done <- q.result
	}
	return done, nil
}

func TestEmailServiceDelivery(t *testing.T) {
	ctx := context.Background()
	user := &models.User{Username: "alice", Email: "alice@example.com"}
	event := &models.Event{ID: "ev1", Name: "Go Meetup", Date: "2030-05-01", Time: "18:30", Location: "Hall A"}

	t.Run("success", func(t *testing.T) {
		queue := &stubQueue{}
		svc := NewEmailService(queue, "http://localhost:8080/", time.Second, testLogger())

		require.NoError(t, svc.SendRSVPConfirmation(ctx, user, event))
		require.Len(t, queue.messages, 1)
		msg := queue.messages[0]
		assert.Equal(t, "alice@example.com", msg.To)
		assert.Equal(t, "RSVP Confirmation - Go Meetup", msg.Subject)
		assert.Contains(t, msg.TextBody, "http://localhost:8080/events/ev1")
	})

	t.Run("activation link", func(t *testing.T) {
		queue := &stubQueue{}
		svc := NewEmailService(queue, "http://localhost:8080", time.Second, testLogger())

		require.NoError(t, svc.SendActivationEmail(ctx, user, "tok"))
		assert.Contains(t, queue.messages[0].HTMLBody, `href="http://localhost:8080/activate/tok"`)
	})

	t.Run("send failure", func(t *testing.T) {
		svc := NewEmailService(&stubQueue{result: errors.New("535 auth failed")}, "", time.Second, testLogger())
		assert.ErrorIs(t, svc.SendRSVPConfirmation(ctx, user, event), ErrNotification)
	})

	t.Run("queue rejects", func(t *testing.T) {
		svc := NewEmailService(&stubQueue{enqueueErr: errors.New("queue full")}, "", time.Second, testLogger())
		assert.ErrorIs(t, svc.SendRSVPConfirmation(ctx, user, event), ErrNotification)
	})

	t.Run("timeout", func(t *testing.T) {
		svc := NewEmailService(&stubQueue{hang: true}, "", 20*time.Millisecond, testLogger())

		start := time.Now()
		err := svc.SendRSVPConfirmation(ctx, user, event)
		assert.ErrorIs(t, err, ErrNotification)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("no recipient", func(t *testing.T) {
		queue := &stubQueue{}
		svc := NewEmailService(queue, "", time.Second, testLogger())
		assert.ErrorIs(t, svc.SendRSVPConfirmation(ctx, &models.User{Username: "ghost"}, event), ErrNotification)
		assert.Empty(t, queue.messages)
	})
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	now := time.Now()

	require.NoError(t, store.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Equal(t, 1, store.Purge(now))
	assert.Equal(t, 0, store.Purge(now))
}
