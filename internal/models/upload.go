package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// UploadStatus is the remote status vocabulary on upload records. Only the
// reconstruction backend advances it; this service never regresses it.
type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadProcessing UploadStatus = "processing"
	UploadDone       UploadStatus = "done"
	UploadFailed     UploadStatus = "failed"
)

// Rank orders the non-terminal progression pending -> processing -> done.
// Unknown statuses rank below pending so they can never overwrite anything.
func (s UploadStatus) Rank() int {
	switch s {
	case UploadPending:
		return 1
	case UploadProcessing:
		return 2
	case UploadDone:
		return 3
	case UploadFailed:
		return 3
	default:
		return 0
	}
}

// UploadRecord ties one uploaded image to its eventual reconstruction result.
// Exactly one record is created per successfully uploaded photo.
type UploadRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ImageURL  string
	Status    UploadStatus
	ModelURL  sql.NullString
	CreatedAt time.Time
}
