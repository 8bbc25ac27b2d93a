package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/classifier"
	"fitmyear-backend/internal/models"
)

var (
	ErrScanInProgress = errors.New("an auto-scan is already running")
	ErrCameraNotReady = errors.New("camera is not ready")
	ErrTargetReached  = errors.New("photo target already reached")
	ErrIncomplete     = errors.New("not enough photos captured")
)

// PhotoStore is the slice of the local photo store the orchestrator needs.
type PhotoStore interface {
	Save(ownerID, uri string, angle models.EarAngle) (*models.CapturedPhoto, error)
	Count(ownerID string) (int, error)
}

// Validator answers whether an image contains an ear.
type Validator interface {
	Validate(ctx context.Context, image []byte) (*classifier.Verdict, error)
}

// FrameSource yields raw camera frames for an auto-scan. Next returns io.EOF
// when no more frames are available.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// Result reports the outcome of a single capture attempt. A rejected frame
// (Accepted=false) is a valid outcome, not an error; nothing is persisted
// for it.
type Result struct {
	Accepted       bool
	PredictedClass string
	EarConfidence  float64
	Photo          *models.CapturedPhoto
}

// ScanResult summarizes an auto-scan run.
type ScanResult struct {
	Captured int
	Count    int
	Target   int
}

// Orchestrator drives the guided capture loop: crop, validate, persist or
// reject. One auto-scan may run per owner at a time.
type Orchestrator struct {
	store     PhotoStore
	validator Validator
	mediaDir  string
	target    int
	scanDelay time.Duration
	log       *logrus.Logger

	mu       sync.Mutex
	scanning map[string]bool
}

func NewOrchestrator(store PhotoStore, validator Validator, mediaDir string, target int, scanDelay time.Duration, log *logrus.Logger) (*Orchestrator, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &Orchestrator{
		store:     store,
		validator: validator,
		mediaDir:  mediaDir,
		target:    target,
		scanDelay: scanDelay,
		log:       log,
		scanning:  make(map[string]bool),
	}, nil
}

func (o *Orchestrator) Target() int {
	return o.target
}

// CaptureOne crops the raw frame to the ear region, asks the classifier for
// a verdict, and persists the cropped image only on an accepting verdict.
// Classifier transport failures come back as an error wrapping
// classifier.ErrUnavailable; a negative verdict is a non-error rejection.
func (o *Orchestrator) CaptureOne(ctx context.Context, ownerID string, frame []byte) (*Result, error) {
	cropped, err := CropEarRegion(frame)
	if err != nil {
		return nil, err
	}

	verdict, err := o.validator.Validate(ctx, cropped)
	if err != nil {
		return nil, err
	}

	if !verdict.IsEar {
		o.log.WithFields(logrus.Fields{
			"owner":      ownerID,
			"prediction": verdict.PredictedClass,
			"confidence": verdict.EarConfidence,
		}).Info("frame rejected by ear classifier")
		return &Result{
			Accepted:       false,
			PredictedClass: verdict.PredictedClass,
			EarConfidence:  verdict.EarConfidence,
		}, nil
	}

	uri, err := o.saveMedia(cropped)
	if err != nil {
		return nil, err
	}

	photo, err := o.store.Save(ownerID, uri, "")
	if err != nil {
		return nil, err
	}

	return &Result{
		Accepted:       true,
		PredictedClass: verdict.PredictedClass,
		EarConfidence:  verdict.EarConfidence,
		Photo:          photo,
	}, nil
}

// StartAutoScan captures frames toward the target count with a fixed delay
// between shots, halting on the first rejected frame or classifier failure.
// The scanning flag is always cleared on exit.
func (o *Orchestrator) StartAutoScan(ctx context.Context, ownerID string, src FrameSource) (*ScanResult, error) {
	if src == nil {
		return nil, ErrCameraNotReady
	}

	count, err := o.store.Count(ownerID)
	if err != nil {
		return nil, err
	}
	if count >= o.target {
		return nil, fmt.Errorf("%w: already have %d photos", ErrTargetReached, count)
	}

	o.mu.Lock()
	if o.scanning[ownerID] {
		o.mu.Unlock()
		return nil, ErrScanInProgress
	}
	o.scanning[ownerID] = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.scanning, ownerID)
		o.mu.Unlock()
	}()

	captured := 0
	for count < o.target {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			o.log.WithError(err).WithField("owner", ownerID).Warn("frame source failed, halting scan")
			break
		}

		res, err := o.CaptureOne(ctx, ownerID, frame)
		if err != nil {
			// First classifier or store failure halts the whole scan; the
			// frames captured so far stay persisted.
			o.log.WithError(err).WithField("owner", ownerID).Warn("capture failed, halting scan")
			break
		}
		if !res.Accepted {
			break
		}

		captured++
		count++

		if count >= o.target {
			break
		}

		select {
		case <-ctx.Done():
			return &ScanResult{Captured: captured, Count: count, Target: o.target}, ctx.Err()
		case <-time.After(o.scanDelay):
		}
	}

	return &ScanResult{Captured: captured, Count: count, Target: o.target}, nil
}

// PickFromGallery persists a gallery-sourced image without an ear-validation
// check. The asymmetry with camera capture is intentional.
func (o *Orchestrator) PickFromGallery(ownerID string, image []byte, angle models.EarAngle) (*models.CapturedPhoto, error) {
	uri, err := o.saveMedia(image)
	if err != nil {
		return nil, err
	}
	return o.store.Save(ownerID, uri, angle)
}

// MarkDone verifies the owner has reached the target count before moving on
// to upload. The error carries the current/target tally for the user.
func (o *Orchestrator) MarkDone(ownerID string) error {
	count, err := o.store.Count(ownerID)
	if err != nil {
		return err
	}
	if count < o.target {
		return fmt.Errorf("%w: %d/%d", ErrIncomplete, count, o.target)
	}
	return nil
}

func (o *Orchestrator) saveMedia(data []byte) (string, error) {
	path := filepath.Join(o.mediaDir, uuid.New().String()+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}
