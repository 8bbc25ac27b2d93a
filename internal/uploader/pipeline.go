package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/models"
)

// RequiredPhotos is the minimum batch size the upload flow accepts.
const RequiredPhotos = 6

var ErrTooFewPhotos = errors.New("not enough photos to upload")

// ObjectStorage uploads image bytes and returns the storage path and the
// public URL.
type ObjectStorage interface {
	UploadImage(ownerKey, ext string, data []byte) (string, string, error)
}

// RecordStore creates one durable upload record per stored image.
type RecordStore interface {
	CreateUpload(ctx context.Context, userID uuid.UUID, imageURL string) (*models.UploadRecord, error)
}

// JobClient asks the external reconstruction backend to start a job over the
// uploaded records.
type JobClient interface {
	CreateJob(ctx context.Context, userID uuid.UUID, uploadIDs []string) error
}

// PhotoStore is the slice of the local store the pipeline needs.
type PhotoStore interface {
	List(ownerID string) ([]models.CapturedPhoto, error)
	Clear(ownerID string) error
}

// Notifier is poked after new upload records exist so status subscribers
// refresh.
type Notifier interface {
	Notify(userID uuid.UUID)
}

// Pipeline uploads the locally persisted photo set one photo at a time, in
// list order. Progress runs 0-80% across the photo uploads, reaches 90%
// after the reconstruction job request, and hits 100% only once the local
// store has been cleared. Any failure aborts the remaining sequence without
// rolling back what already uploaded; the local photos are left untouched so
// the user can retry the whole batch.
type Pipeline struct {
	photos   PhotoStore
	storage  ObjectStorage
	records  RecordStore
	jobs     JobClient
	notifier Notifier
	min      int
	log      *logrus.Logger
}

// NewPipeline wires the pipeline. min is the screen-specific minimum batch
// size; the upload flow uses RequiredPhotos.
func NewPipeline(photos PhotoStore, storage ObjectStorage, records RecordStore, jobs JobClient, notifier Notifier, min int, log *logrus.Logger) *Pipeline {
	if min < 1 {
		min = 1
	}
	return &Pipeline{
		photos:   photos,
		storage:  storage,
		records:  records,
		jobs:     jobs,
		notifier: notifier,
		min:      min,
		log:      log,
	}
}

// Upload runs the full pipeline for one user. onProgress, when non-nil,
// receives monotonically non-decreasing percentages. The returned IDs are
// the created upload records, in photo order.
func (p *Pipeline) Upload(ctx context.Context, userID uuid.UUID, onProgress func(int)) ([]string, error) {
	report := func(pct int) {
		if onProgress != nil {
			onProgress(pct)
		}
	}

	stored, err := p.photos.List(userID.String())
	if err != nil {
		return nil, err
	}
	if len(stored) < p.min {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewPhotos, len(stored), p.min)
	}

	report(0)

	uploadIDs := make([]string, 0, len(stored))
	for i, photo := range stored {
		data, err := os.ReadFile(photo.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo %s: %w", photo.ID, err)
		}

		_, publicURL, err := p.storage.UploadImage(userID.String(), extOf(photo.URI), data)
		if err != nil {
			return nil, fmt.Errorf("upload failed at photo %d of %d: %w", i+1, len(stored), err)
		}

		rec, err := p.records.CreateUpload(ctx, userID, publicURL)
		if err != nil {
			return nil, fmt.Errorf("failed to register upload %d of %d: %w", i+1, len(stored), err)
		}
		uploadIDs = append(uploadIDs, rec.ID.String())

		report((i + 1) * 80 / len(stored))
	}

	if p.jobs != nil {
		report(90)
		if err := p.jobs.CreateJob(ctx, userID, uploadIDs); err != nil {
			return nil, fmt.Errorf("failed to request reconstruction job: %w", err)
		}
	}

	if err := p.photos.Clear(userID.String()); err != nil {
		return nil, fmt.Errorf("failed to clear local photos: %w", err)
	}
	report(100)

	if p.notifier != nil {
		p.notifier.Notify(userID)
	}

	p.log.WithFields(logrus.Fields{
		"user":    userID,
		"uploads": len(uploadIDs),
	}).Info("upload batch complete")

	return uploadIDs, nil
}

func extOf(uri string) string {
	if i := strings.LastIndex(uri, "."); i >= 0 && i < len(uri)-1 {
		return uri[i+1:]
	}
	return "jpg"
}
