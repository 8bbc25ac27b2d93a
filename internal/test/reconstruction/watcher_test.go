package reconstruction_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/reconstruction"
)

func record(status models.UploadStatus, createdAt time.Time) models.UploadRecord {
	return models.UploadRecord{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ImageURL:  "https://cdn.example.com/a.jpg",
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestProject_NoRecords(t *testing.T) {
	assert.Nil(t, reconstruction.Project(nil))
	assert.Nil(t, reconstruction.Project([]models.UploadRecord{}))
}

func TestProject_StatusMapping(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		status       models.UploadStatus
		wantStatus   reconstruction.JobStatus
		wantProgress int
	}{
		{"pending maps to queued", models.UploadPending, reconstruction.StatusQueued, 10},
		{"processing keeps its name", models.UploadProcessing, reconstruction.StatusProcessing, 60},
		{"done maps to completed", models.UploadDone, reconstruction.StatusCompleted, 100},
		{"failed resets progress", models.UploadFailed, reconstruction.StatusFailed, 0},
		{"unrecognized is unknown", models.UploadStatus("archived"), reconstruction.StatusUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := reconstruction.Project([]models.UploadRecord{record(tt.status, now)})
			require.NotNil(t, job)
			assert.Equal(t, tt.wantStatus, job.Status)
			assert.Equal(t, tt.wantProgress, job.Progress)
		})
	}
}

func TestProject_CompletedAtOnlyWhenDone(t *testing.T) {
	now := time.Now()

	done := reconstruction.Project([]models.UploadRecord{record(models.UploadDone, now)})
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, now, *done.CompletedAt)

	pending := reconstruction.Project([]models.UploadRecord{record(models.UploadPending, now)})
	assert.Nil(t, pending.CompletedAt)
}

func TestProject_FailedCarriesMessage(t *testing.T) {
	job := reconstruction.Project([]models.UploadRecord{record(models.UploadFailed, time.Now())})
	assert.NotEmpty(t, job.ErrorMessage)
}

func TestProject_UsesNewestRecord(t *testing.T) {
	now := time.Now()
	newest := record(models.UploadDone, now)
	older := record(models.UploadPending, now.Add(-time.Hour))

	// The feed returns newest first; the projection reads only the head.
	job := reconstruction.Project([]models.UploadRecord{newest, older})
	require.NotNil(t, job)
	assert.Equal(t, newest.ID.String(), job.ID)
	assert.Equal(t, reconstruction.StatusCompleted, job.Status)
}

func TestProject_ModelURL(t *testing.T) {
	rec := record(models.UploadDone, time.Now())
	rec.ModelURL = sql.NullString{String: "https://cdn.example.com/model.glb", Valid: true}

	job := reconstruction.Project([]models.UploadRecord{rec})
	assert.Equal(t, "https://cdn.example.com/model.glb", job.ModelURL)
}

// stubFeed serves a mutable record list guarded for concurrent reads.
type stubFeed struct {
	mu      sync.Mutex
	records []models.UploadRecord
}

func (f *stubFeed) set(records []models.UploadRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
}

func (f *stubFeed) ListUserUploads(_ context.Context, _ uuid.UUID) ([]models.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, nil
}

func TestSubscribe_DeliversImmediatelyAndOnNotify(t *testing.T) {
	feed := &stubFeed{}
	hub := reconstruction.NewHub()
	watcher := reconstruction.NewWatcher(feed, hub, logrus.New())
	userID := uuid.New()

	feed.set([]models.UploadRecord{record(models.UploadPending, time.Now())})

	updates := make(chan *reconstruction.Job, 8)
	unsubscribe := watcher.Subscribe(context.Background(), userID, func(job *reconstruction.Job) {
		updates <- job
	})
	defer unsubscribe()

	select {
	case job := <-updates:
		require.NotNil(t, job)
		assert.Equal(t, reconstruction.StatusQueued, job.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial delivery")
	}

	feed.set([]models.UploadRecord{record(models.UploadProcessing, time.Now())})
	hub.Notify(userID)

	select {
	case job := <-updates:
		require.NotNil(t, job)
		assert.Equal(t, reconstruction.StatusProcessing, job.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery after notify")
	}
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	feed := &stubFeed{}
	hub := reconstruction.NewHub()
	watcher := reconstruction.NewWatcher(feed, hub, logrus.New())
	userID := uuid.New()

	updates := make(chan *reconstruction.Job, 8)
	unsubscribe := watcher.Subscribe(context.Background(), userID, func(job *reconstruction.Job) {
		updates <- job
	})

	// Drain the initial delivery (nil: no records yet).
	select {
	case job := <-updates:
		assert.Nil(t, job)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial delivery")
	}

	unsubscribe()
	unsubscribe() // calling twice is safe

	hub.Notify(userID)
	select {
	case <-updates:
		t.Fatal("delivery after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_NotifyWithoutSubscribersIsNoop(t *testing.T) {
	hub := reconstruction.NewHub()
	hub.Notify(uuid.New()) // must not panic or block
}

func TestHub_NotifyReachesOnlyThatUser(t *testing.T) {
	hub := reconstruction.NewHub()
	alice, bob := uuid.New(), uuid.New()

	aliceWake, aliceStop := hub.Register(alice)
	defer aliceStop()
	bobWake, bobStop := hub.Register(bob)
	defer bobStop()

	hub.Notify(alice)

	select {
	case <-aliceWake:
	case <-time.After(time.Second):
		t.Fatal("alice never woke")
	}

	select {
	case <-bobWake:
		t.Fatal("bob woke for alice's notification")
	case <-time.After(50 * time.Millisecond):
	}
}
