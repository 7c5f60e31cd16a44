package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// ReminderFanout delivers a batch of reminders best-effort and reports how
// many were sent successfully.
type ReminderFanout interface {
	Deliver(ctx context.Context, reminders []ports.Reminder) int
}

// RosterService computes bound-but-unchecked identities and drives the
// scheduled reminder job.
type RosterService struct {
	directory    ports.DirectoryService
	store        ports.AttendanceStore
	fanout       ReminderFanout
	loc          *time.Location
	cutoff       Cutoff
	onlyWeekdays bool
	logger       zerolog.Logger
}

func NewRosterService(
	directory ports.DirectoryService,
	store ports.AttendanceStore,
	fanout ReminderFanout,
	loc *time.Location,
	cutoff Cutoff,
	onlyWeekdays bool,
	logger zerolog.Logger,
) *RosterService {
	return &RosterService{
		directory:    directory,
		store:        store,
		fanout:       fanout,
		loc:          loc,
		cutoff:       cutoff,
		onlyWeekdays: onlyWeekdays,
		logger:       logger,
	}
}

// UncheckedFor returns all bound names without a ledger row for date.
func (s *RosterService) UncheckedFor(ctx context.Context, date string) ([]string, error) {
	return s.store.ListUnchecked(ctx, date)
}

// Scan runs the reminder job for the given instant. Two gates apply before
// any store access: weekend days are skipped when configured, and the scan
// does nothing until the cutoff has passed. A single delivery failure never
// aborts the batch; the full unchecked list is returned regardless of
// delivery outcome.
func (s *RosterService) Scan(ctx context.Context, now time.Time) (*ports.ScanResult, error) {
	local := now.In(s.loc)
	date := local.Format(domain.DateLayout)

	if s.onlyWeekdays && isWeekend(local) {
		return &ports.ScanResult{Status: ports.ScanSkippedWeekend, Date: date}, nil
	}
	if !local.After(s.cutoff.On(local, s.loc)) {
		return &ports.ScanResult{Status: ports.ScanBeforeCutoff, Date: date}, nil
	}

	snapshot, err := s.directory.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	unchecked, err := s.store.ListUnchecked(ctx, date)
	if err != nil {
		return nil, err
	}

	reminders := make([]ports.Reminder, 0, len(unchecked))
	for _, name := range unchecked {
		accountID, ok := snapshot.NameToAccount[name]
		if !ok {
			continue
		}
		reminders = append(reminders, ports.Reminder{
			Name:      name,
			AccountID: accountID,
			Text:      fmt.Sprintf("%s, reminder: you have not checked in today (%s).", name, date),
		})
	}

	reminded := s.fanout.Deliver(ctx, reminders)

	s.logger.Info().
		Str("date", date).
		Int("unchecked", len(unchecked)).
		Int("reminded", reminded).
		Msg("roster scan completed")

	return &ports.ScanResult{
		Status:    ports.ScanCompleted,
		Date:      date,
		Reminded:  reminded,
		Unchecked: unchecked,
	}, nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
