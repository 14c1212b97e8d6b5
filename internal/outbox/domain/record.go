// Package domain defines the shared outbox work-item model used by both
// delivery workers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an outbox record.
// Success and Failed are terminal: a record never transitions out of them.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record holds the columns common to every outbox work item. Worker-specific
// rows (notification messages, webhook deliveries) embed it.
//
// Invariants maintained by the stores:
//   - Attempts increases by exactly 1 per processed cycle and never decreases.
//   - ScheduledAt only ever moves forward.
//   - LastError is cleared only on transition to Success.
type Record struct {
	ID          uuid.UUID
	Event       string
	Status      Status
	Attempts    int
	LastError   *string
	ScheduledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Meta returns the record itself; embedding types satisfy the dispatcher's
// Item interface through it.
func (r *Record) Meta() *Record {
	return r
}

// Terminal reports whether the record is in a terminal state.
func (r *Record) Terminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailed
}

// Due reports whether the record is eligible for claiming at the given time.
func (r *Record) Due(now time.Time) bool {
	return r.Status == StatusPending && !r.ScheduledAt.After(now)
}
