package uploader_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/photostore"
	"fitmyear-backend/internal/uploader"
)

type fakeStorage struct {
	uploaded []string
	failAt   int // 1-based call index to fail on; 0 = never
	calls    int
}

func (f *fakeStorage) UploadImage(ownerKey, ext string, data []byte) (string, string, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return "", "", errors.New("storage unavailable")
	}
	path := fmt.Sprintf("users/%s/uploads/%d.%s", ownerKey, f.calls, ext)
	f.uploaded = append(f.uploaded, path)
	return path, "https://cdn.example.com/" + path, nil
}

type fakeRecords struct {
	created []models.UploadRecord
}

func (f *fakeRecords) CreateUpload(_ context.Context, userID uuid.UUID, imageURL string) (*models.UploadRecord, error) {
	rec := models.UploadRecord{
		ID:       uuid.New(),
		UserID:   userID,
		ImageURL: imageURL,
		Status:   models.UploadPending,
	}
	f.created = append(f.created, rec)
	return &rec, nil
}

type fakeJobs struct {
	requests [][]string
	err      error
}

func (f *fakeJobs) CreateJob(_ context.Context, _ uuid.UUID, uploadIDs []string) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, uploadIDs)
	return nil
}

type fakeNotifier struct {
	notified []uuid.UUID
}

func (f *fakeNotifier) Notify(userID uuid.UUID) {
	f.notified = append(f.notified, userID)
}

func seedPhotos(t *testing.T, store *photostore.Store, ownerID string, n int) {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%d.jpg", i))
		require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o644))
		_, err := store.Save(ownerID, path, "")
		require.NoError(t, err)
	}
}

func TestUpload_FullBatch(t *testing.T) {
	store, err := photostore.NewStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.New()
	seedPhotos(t, store, userID.String(), 6)

	storage := &fakeStorage{}
	records := &fakeRecords{}
	jobs := &fakeJobs{}
	notifier := &fakeNotifier{}
	pipeline := uploader.NewPipeline(store, storage, records, jobs, notifier, uploader.RequiredPhotos, logrus.New())

	var progress []int
	ids, err := pipeline.Upload(context.Background(), userID, func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	require.Len(t, ids, 6)
	assert.Len(t, records.created, 6)
	require.Len(t, jobs.requests, 1)
	assert.Equal(t, ids, jobs.requests[0])
	assert.Equal(t, []uuid.UUID{userID}, notifier.notified)

	// Progress is monotonic, scales through 80 across the photos, touches 90
	// for the job request, and ends at exactly 100.
	require.NotEmpty(t, progress)
	assert.Equal(t, 0, progress[0])
	assert.Equal(t, 100, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Contains(t, progress, 80)
	assert.Contains(t, progress, 90)

	// The local set is cleared only after everything succeeded.
	count, err := store.Count(userID.String())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpload_TooFewPhotos(t *testing.T) {
	store, err := photostore.NewStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.New()
	seedPhotos(t, store, userID.String(), 2)

	pipeline := uploader.NewPipeline(store, &fakeStorage{}, &fakeRecords{}, nil, nil, uploader.RequiredPhotos, logrus.New())

	_, err = pipeline.Upload(context.Background(), userID, nil)
	assert.ErrorIs(t, err, uploader.ErrTooFewPhotos)
}

func TestUpload_MidBatchFailureLeavesLocalSetIntact(t *testing.T) {
	store, err := photostore.NewStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.New()
	seedPhotos(t, store, userID.String(), 3)

	storage := &fakeStorage{failAt: 2}
	records := &fakeRecords{}
	pipeline := uploader.NewPipeline(store, storage, records, nil, nil, 3, logrus.New())

	var progress []int
	_, err = pipeline.Upload(context.Background(), userID, func(pct int) {
		progress = append(progress, pct)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo 2 of 3")

	// The first photo's record stands; nothing is rolled back. The local set
	// is untouched so the user can retry the whole batch.
	assert.Len(t, records.created, 1)
	count, err := store.Count(userID.String())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NotContains(t, progress, 100)
}

func TestUpload_JobFailureSkipsClear(t *testing.T) {
	store, err := photostore.NewStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.New()
	seedPhotos(t, store, userID.String(), 6)

	jobs := &fakeJobs{err: errors.New("reconstruction backend down")}
	pipeline := uploader.NewPipeline(store, &fakeStorage{}, &fakeRecords{}, jobs, nil, uploader.RequiredPhotos, logrus.New())

	_, err = pipeline.Upload(context.Background(), userID, nil)
	require.Error(t, err)

	count, err := store.Count(userID.String())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestUpload_NoJobClientStillCompletes(t *testing.T) {
	store, err := photostore.NewStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.New()
	seedPhotos(t, store, userID.String(), 6)

	var progress []int
	pipeline := uploader.NewPipeline(store, &fakeStorage{}, &fakeRecords{}, nil, nil, uploader.RequiredPhotos, logrus.New())
	_, err = pipeline.Upload(context.Background(), userID, func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	assert.NotContains(t, progress, 90)
	assert.Equal(t, 100, progress[len(progress)-1])
}
