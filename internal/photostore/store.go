package photostore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitmyear-backend/internal/models"
)

// MaxPhotos caps the stored collection per owner.
const MaxPhotos = 20

var (
	ErrCapacityExceeded = errors.New("photo store is full")
	ErrDuplicateAngle   = errors.New("a photo for this angle already exists")
	ErrInvalidAngle     = errors.New("unknown ear angle")
)

// Store persists each owner's captured photos as one JSON file, rewritten
// whole on every mutation. Mutations are serialized by a single mutex; the
// write goes through a temp file and rename so callers never observe a
// partially written collection.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(ownerID string) string {
	return filepath.Join(s.dir, ownerID+".json")
}

// List returns the owner's stored photos in insertion order. A missing file
// means an empty collection, not an error.
func (s *Store) List(ownerID string) ([]models.CapturedPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ownerID)
}

// Save appends a new photo record and persists the full collection. It fails
// with ErrCapacityExceeded at MaxPhotos and with ErrDuplicateAngle when the
// given angle slot is already taken; on either failure the store is unchanged.
func (s *Store) Save(ownerID, uri string, angle models.EarAngle) (*models.CapturedPhoto, error) {
	if angle != "" && !angle.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAngle, angle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	photos, err := s.load(ownerID)
	if err != nil {
		return nil, err
	}

	if len(photos) >= MaxPhotos {
		return nil, fmt.Errorf("%w: limit is %d", ErrCapacityExceeded, MaxPhotos)
	}

	if angle != "" {
		for _, p := range photos {
			if p.Angle == angle {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateAngle, angle)
			}
		}
	}

	photo := models.CapturedPhoto{
		ID:        uuid.New().String(),
		URI:       uri,
		Timestamp: time.Now(),
		Angle:     angle,
	}
	photos = append(photos, photo)

	if err := s.persist(ownerID, photos); err != nil {
		return nil, err
	}
	return &photo, nil
}

// Delete removes the photo with the given id. Deleting an unknown id is a
// no-op.
func (s *Store) Delete(ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos, err := s.load(ownerID)
	if err != nil {
		return err
	}

	filtered := photos[:0]
	for _, p := range photos {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == len(photos) {
		return nil
	}
	return s.persist(ownerID, filtered)
}

// Clear removes every photo for the owner.
func (s *Store) Clear(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(ownerID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear photos: %w", err)
	}
	return nil
}

// Count returns the number of stored photos for the owner.
func (s *Store) Count(ownerID string) (int, error) {
	photos, err := s.List(ownerID)
	if err != nil {
		return 0, err
	}
	return len(photos), nil
}

func (s *Store) load(ownerID string) ([]models.CapturedPhoto, error) {
	data, err := os.ReadFile(s.path(ownerID))
	if os.IsNotExist(err) {
		return []models.CapturedPhoto{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read photo collection: %w", err)
	}

	var photos []models.CapturedPhoto
	if err := json.Unmarshal(data, &photos); err != nil {
		return nil, fmt.Errorf("corrupt photo collection for %s: %w", ownerID, err)
	}
	return photos, nil
}

func (s *Store) persist(ownerID string, photos []models.CapturedPhoto) error {
	data, err := json.MarshalIndent(photos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal photo collection: %w", err)
	}

	tmp := s.path(ownerID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write photo collection: %w", err)
	}
	if err := os.Rename(tmp, s.path(ownerID)); err != nil {
		return fmt.Errorf("failed to replace photo collection: %w", err)
	}
	return nil
}
