// File: /jobs/cleanup_job.go
package jobs

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Purger drops stale entries and reports how many were removed.
type Purger interface {
	Purge(now time.Time) int
}

// CleanupJob periodically purges an in-memory store, such as revoked
// session tokens or idle rate limiters.
type CleanupJob struct {
	name   string
	store  Purger
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	log    *logrus.Entry
}

func NewCleanupJob(name string, store Purger, interval time.Duration, l *logrus.Logger) *CleanupJob {
	return &CleanupJob{
		name:   name,
		store:  store,
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
		log:    l.WithField("from", name+"-cleanup"),
	}
}

// Start begins the cleanup job
func (j *CleanupJob) Start() {
	j.log.Info("cleanup job started")

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				j.log.Info("cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the cleanup job
func (j *CleanupJob) Stop() {
	j.once.Do(func() {
		j.ticker.Stop()
		close(j.done)
	})
}

func (j *CleanupJob) cleanup() {
	if removed := j.store.Purge(time.Now()); removed > 0 {
		j.log.Debugf("purged %d %s entries", removed, j.name)
	}
}
