// File: /services/email_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"eventhub-api/models"
)

// Message is a single outgoing email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers one message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailQueue accepts messages for background delivery. The returned channel
// receives exactly one delivery result.
type MailQueue interface {
	Enqueue(msg Message) (<-chan error, error)
}

type EmailService struct {
	queue   MailQueue
	baseURL string
	timeout time.Duration
	log     *logrus.Entry
}

func NewEmailService(queue MailQueue, baseURL string, timeout time.Duration, l *logrus.Logger) *EmailService {
	return &EmailService{
		queue:   queue,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     l.WithField("from", "email-service"),
	}
}

func (es *EmailService) ActivationURL(token string) string {
	return fmt.Sprintf("%s/activate/%s", es.baseURL, token)
}

func (es *EmailService) EventURL(eventID string) string {
	return fmt.Sprintf("%s/events/%s", es.baseURL, eventID)
}

// SendActivationEmail delivers the activation link. Failures are returned
// wrapped in ErrNotification.
func (es *EmailService) SendActivationEmail(ctx context.Context, user *models.User, token string) error {
	link := es.ActivationURL(token)
	return es.deliver(ctx, Message{
		To:      user.Email,
		Subject: "Activate your Event Management account",
		TextBody: fmt.Sprintf("Hello %s,\n\nPlease activate your account by opening the link below:\n%s\n",
			user.Username, link),
		HTMLBody: fmt.Sprintf(`<p>Hello %s,</p><p>Please activate your account:</p><p><a href="%s">%s</a></p>`,
			user.Username, link, link),
	})
}

// SendRSVPConfirmation confirms an attending RSVP to the user.
func (es *EmailService) SendRSVPConfirmation(ctx context.Context, user *models.User, event *models.Event) error {
	link := es.EventURL(event.ID)
	return es.deliver(ctx, Message{
		To:      user.Email,
		Subject: fmt.Sprintf("RSVP Confirmation - %s", event.Name),
		TextBody: fmt.Sprintf("Hello %s,\n\nYou are attending %q on %s at %s, %s.\n%s\n",
			user.Username, event.Name, event.Date, event.Time, event.Location, link),
		HTMLBody: fmt.Sprintf(`<p>Hello %s,</p><p>You are attending <strong>%s</strong> on %s at %s, %s.</p><p><a href="%s">View event</a></p>`,
			user.Username, event.Name, event.Date, event.Time, event.Location, link),
	})
}

// deliver hands the message to the queue and waits at most es.timeout for
// the outcome. A timeout leaves the message in flight.
func (es *EmailService) deliver(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("%w: no recipient address", ErrNotification)
	}

	done, err := es.queue.Enqueue(msg)
	if err != nil {
		es.log.WithError(err).Warnf("could not queue email to %s", msg.To)
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}

	timer := time.NewTimer(es.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			es.log.WithError(err).Warnf("email to %s failed", msg.To)
			return fmt.Errorf("%w: %v", ErrNotification, err)
		}
		es.log.Debugf("email %q sent to %s", msg.Subject, msg.To)
		return nil
	case <-timer.C:
		es.log.Warnf("email to %s not confirmed within %s", msg.To, es.timeout)
		return fmt.Errorf("%w: timed out after %s", ErrNotification, es.timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotification, ctx.Err())
	}
}
