package domain

import (
	"errors"
	"time"
)

// Sentinel errors shared by the adapters and the catalog service.
var (
	ErrNotConfigured   = errors.New("not configured")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found")
	ErrPeakNotFound    = errors.New("peak not found")
)

// PeakAction names the mutation that produced a PeakEvent.
type PeakAction string

const (
	PeakCreated PeakAction = "created"
	PeakUpdated PeakAction = "updated"
	PeakDeleted PeakAction = "deleted"
)

// PeakEvent describes a successful peak mutation for downstream consumers.
// Peak is nil for deletions.
type PeakEvent struct {
	Action     PeakAction `json:"action"`
	PeakID     string     `json:"peak_id"`
	UserID     string     `json:"user_id,omitempty"`
	Peak       *Peak      `json:"peak,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewPeakEvent stamps a PeakEvent with the package clock.
func NewPeakEvent(action PeakAction, peakID, userID string, p *Peak) PeakEvent {
	return PeakEvent{
		Action:     action,
		PeakID:     peakID,
		UserID:     userID,
		Peak:       p,
		OccurredAt: clock.Now().UTC(),
	}
}
