// File: /jobs/mail_dispatcher.go
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"eventhub-api/services"
)

var (
	ErrQueueFull    = errors.New("mail queue is full")
	ErrQueueStopped = errors.New("mail queue is stopped")
)

type mailJob struct {
	msg  services.Message
	done chan error
}

// MailDispatcher delivers queued messages with a fixed pool of workers.
// Each send is bounded by sendTimeout.
type MailDispatcher struct {
	mailer      services.Mailer
	queue       chan mailJob
	workers     int
	sendTimeout time.Duration
	log         *logrus.Entry

	mutex   sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewMailDispatcher(mailer services.Mailer, workers, queueSize int, sendTimeout time.Duration, l *logrus.Logger) *MailDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &MailDispatcher{
		mailer:      mailer,
		queue:       make(chan mailJob, queueSize),
		workers:     workers,
		sendTimeout: sendTimeout,
		log:         l.WithField("from", "mail-dispatcher"),
	}
}

// Start launches the workers.
func (d *MailDispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	d.log.Infof("mail dispatcher started with %d workers", d.workers)
}

// Stop refuses new messages, drains the queue and waits for the workers.
func (d *MailDispatcher) Stop() {
	d.mutex.Lock()
	if d.stopped {
		d.mutex.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mutex.Unlock()

	d.wg.Wait()
	d.log.Info("mail dispatcher stopped")
}

// Enqueue implements services.MailQueue. It never blocks: a full queue is
// reported as ErrQueueFull.
func (d *MailDispatcher) Enqueue(msg services.Message) (<-chan error, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	if d.stopped {
		return nil, ErrQueueStopped
	}

	job := mailJob{msg: msg, done: make(chan error, 1)}
	select {
	case d.queue <- job:
		return job.done, nil
	default:
		return nil, ErrQueueFull
	}
}

func (d *MailDispatcher) work(id int) {
	defer d.wg.Done()
	for job := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.mailer.Send(ctx, job.msg)
		cancel()
		if err != nil {
			d.log.WithError(err).WithField("worker", id).Warnf("sending %q to %s failed", job.msg.Subject, job.msg.To)
		}
		job.done <- err
	}
}
