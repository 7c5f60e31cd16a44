package ports

import (
	"context"
	"time"
)

// CheckinStatus is the outcome of a check-in attempt.
type CheckinStatus string

const (
	// CheckinOK means the check-in was accepted, notified, and recorded.
	CheckinOK CheckinStatus = "ok"
	// CheckinDuplicate means the identity already checked in today; the call
	// is an idempotent no-op, not an error.
	CheckinDuplicate CheckinStatus = "duplicate"
)

// CheckinInput carries a check-in report from the transport layer.
type CheckinInput struct {
	Name string
	// When is an optional client-asserted ISO-8601 instant. Empty means "now".
	// A timezone-naive value is interpreted in the configured zone.
	When string
}

// CheckinResult is returned on an accepted or duplicate check-in.
type CheckinResult struct {
	Status CheckinStatus
	// Late is true when the effective instant falls strictly after the
	// configured cutoff. Only meaningful for CheckinOK.
	Late bool
	// Date is the local calendar day the ledger was keyed on.
	Date string
	// CheckedAt is the effective instant in the configured zone.
	CheckedAt time.Time
}

// CheckinService decides duplicate vs new check-in, classifies lateness, and
// triggers the confirmation push before recording.
type CheckinService interface {
	CheckIn(ctx context.Context, input CheckinInput) (*CheckinResult, error)
}
