package models

import "time"

// EarAngle is one of the canonical ear orientations the guided capture
// flow wants exactly one photo for.
type EarAngle string

const (
	AngleBack45  EarAngle = "back_45"
	AngleSide    EarAngle = "side"
	AngleFront   EarAngle = "front"
	AngleFront45 EarAngle = "front_45"
	AngleBack    EarAngle = "back"
)

// EarAngles lists every valid angle slot in guide order.
var EarAngles = []EarAngle{AngleBack45, AngleSide, AngleFront, AngleFront45, AngleBack}

func (a EarAngle) Valid() bool {
	for _, known := range EarAngles {
		if a == known {
			return true
		}
	}
	return false
}

// CapturedPhoto is a locally persisted photo awaiting upload.
// Angle is empty for gallery imports and auto-scan frames.
type CapturedPhoto struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Timestamp time.Time `json:"timestamp"`
	Angle     EarAngle  `json:"angle,omitempty"`
}
