package ports

import (
	"context"
	"time"
)

// ScanStatus reports why a roster scan did or did not run.
type ScanStatus string

const (
	ScanCompleted      ScanStatus = "ok"
	ScanSkippedWeekend ScanStatus = "skip_weekend"
	ScanBeforeCutoff   ScanStatus = "not_after_cutoff"
)

// Reminder is one pending reminder notification.
type Reminder struct {
	Name      string
	AccountID string
	Text      string
}

// ScanResult is returned by a roster scan. Unchecked always carries the full
// unchecked-name list regardless of how many reminders were delivered.
type ScanResult struct {
	Status    ScanStatus `json:"status"`
	Date      string     `json:"date,omitempty"`
	Reminded  int        `json:"reminded"`
	Unchecked []string   `json:"unchecked"`
}

// RosterService computes the set of bound identities with no check-in for a
// given day and drives the scheduled reminder job.
type RosterService interface {
	UncheckedFor(ctx context.Context, date string) ([]string, error)
	// Scan applies the weekend and cutoff gates for the given instant, then
	// sends best-effort reminders to every unchecked identity.
	Scan(ctx context.Context, now time.Time) (*ScanResult, error)
}
