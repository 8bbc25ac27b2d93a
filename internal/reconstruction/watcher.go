package reconstruction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/models"
)

// JobStatus is the client-facing projection vocabulary.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	// StatusUnknown covers remote statuses this build does not recognize, so
	// an unexpected value never corrupts the projection.
	StatusUnknown JobStatus = "unknown"
)

// Job is the read-only projection of the user's latest upload record.
// It is recomputed on every notification and never persisted.
type Job struct {
	ID           string
	Status       JobStatus
	Progress     int
	ModelURL     string
	CompletedAt  *time.Time
	ErrorMessage string
}

// Feed lists upload records for a user, newest first.
type Feed interface {
	ListUserUploads(ctx context.Context, userID uuid.UUID) ([]models.UploadRecord, error)
}

// Watcher derives the reconstruction job projection from upload records and
// pushes it to subscribers whenever the hub signals a change.
type Watcher struct {
	feed Feed
	hub  *Hub
	log  *logrus.Logger
}

func NewWatcher(feed Feed, hub *Hub, log *logrus.Logger) *Watcher {
	return &Watcher{feed: feed, hub: hub, log: log}
}

// Project maps the user's latest upload record onto the client projection.
// Records arrive newest first (created_at, then id, both descending), so the
// tie-break on equal creation instants is deterministic. Returns nil when
// the user has no records.
func Project(records []models.UploadRecord) *Job {
	if len(records) == 0 {
		return nil
	}
	latest := records[0]

	job := &Job{ID: latest.ID.String()}
	if latest.ModelURL.Valid {
		job.ModelURL = latest.ModelURL.String
	}

	switch latest.Status {
	case models.UploadPending:
		job.Status = StatusQueued
		job.Progress = 10
	case models.UploadProcessing:
		job.Status = StatusProcessing
		job.Progress = 60
	case models.UploadDone:
		job.Status = StatusCompleted
		job.Progress = 100
		completed := latest.CreatedAt
		job.CompletedAt = &completed
	case models.UploadFailed:
		job.Status = StatusFailed
		job.Progress = 0
		job.ErrorMessage = "An error occurred during processing."
	default:
		job.Status = StatusUnknown
		job.Progress = 0
	}

	return job
}

// Current fetches and projects the user's latest state once.
func (w *Watcher) Current(ctx context.Context, userID uuid.UUID) (*Job, error) {
	records, err := w.feed.ListUserUploads(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Project(records), nil
}

// Subscribe delivers the current projection immediately and again on every
// change notification until the context ends or the returned unsubscribe
// function is called. onUpdate receives nil when the user has no records.
// Callers must unsubscribe on teardown.
func (w *Watcher) Subscribe(ctx context.Context, userID uuid.UUID, onUpdate func(*Job)) func() {
	wake, unregister := w.hub.Register(userID)
	done := make(chan struct{})

	deliver := func() {
		job, err := w.Current(ctx, userID)
		if err != nil {
			w.log.WithError(err).WithField("user", userID).Error("failed to refresh reconstruction status")
			return
		}
		onUpdate(job)
	}

	go func() {
		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-wake:
				deliver()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unregister()
			close(done)
		})
	}
}
