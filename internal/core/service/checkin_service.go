package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// CheckinGuard abstracts the optional atomic dedup store (Redis). Acquire
// claims the (date, name) slot; it reports false when another request already
// holds it. Release frees the slot so a failed check-in can be retried.
type CheckinGuard interface {
	Acquire(ctx context.Context, date, name string) (bool, error)
	Release(ctx context.Context, date, name string) error
}

// CheckinService runs the per-(name, day) check-in state machine:
// NOT_CHECKED_IN transitions to CHECKED_IN exactly once, the confirmation
// push happens before the ledger write, and the write only happens when the
// push succeeded.
type CheckinService struct {
	directory ports.DirectoryService
	store     ports.AttendanceStore
	notifier  ports.Notifier
	guard     CheckinGuard // nil when no atomic backend is configured
	loc       *time.Location
	cutoff    Cutoff
	now       func() time.Time
	logger    zerolog.Logger
}

func NewCheckinService(
	directory ports.DirectoryService,
	store ports.AttendanceStore,
	notifier ports.Notifier,
	guard CheckinGuard,
	loc *time.Location,
	cutoff Cutoff,
	logger zerolog.Logger,
) *CheckinService {
	return &CheckinService{
		directory: directory,
		store:     store,
		notifier:  notifier,
		guard:     guard,
		loc:       loc,
		cutoff:    cutoff,
		now:       time.Now,
		logger:    logger,
	}
}

// CheckIn processes a single check-in report. Returns CheckinDuplicate when
// the identity already checked in today (idempotent, not an error). The
// ledger row is written only after the confirmation push succeeds, so a
// recorded check-in always means a notified one.
func (s *CheckinService) CheckIn(ctx context.Context, input ports.CheckinInput) (*ports.CheckinResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	accountID, err := s.directory.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.loc).Format(domain.DateLayout)

	// Duplicate check happens before any write.
	checked, err := s.store.IsCheckedIn(ctx, name, today)
	if err != nil {
		return nil, err
	}
	if checked {
		s.logger.Debug().Str("name", name).Str("date", today).Msg("duplicate check-in skipped")
		return &ports.CheckinResult{Status: ports.CheckinDuplicate, Date: today}, nil
	}

	when := input.When
	var at time.Time
	if when == "" {
		at = s.now().In(s.loc)
		when = at.Format(time.RFC3339)
	} else {
		at, err = parseWhen(when, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedTimestamp, err)
		}
	}

	late := at.After(s.cutoff.On(at, s.loc))

	// The store read above leaves a race window between two overlapping
	// requests. When an atomic backend is configured the guard closes it:
	// losing the claim means someone else is checking this name in right now.
	if s.guard != nil {
		acquired, gerr := s.guard.Acquire(ctx, today, name)
		if gerr != nil {
			s.logger.Warn().Err(gerr).Str("name", name).Msg("check-in guard unavailable, proceeding")
		} else if !acquired {
			return &ports.CheckinResult{Status: ports.CheckinDuplicate, Date: today}, nil
		}
	}

	text := fmt.Sprintf("%s checked in at %s", name, at.Format("2006-01-02 15:04:05"))
	if late {
		text += fmt.Sprintf(" (past the %s cutoff)", s.cutoff)
	}

	if err := s.notifier.Push(ctx, accountID, text); err != nil {
		s.releaseGuard(ctx, today, name)
		s.logger.Error().Err(err).Str("name", name).Msg("check-in confirmation failed, not recording")
		return nil, err
	}

	if err := s.store.RecordCheckin(ctx, name, when, accountID); err != nil {
		s.releaseGuard(ctx, today, name)
		return nil, err
	}

	s.logger.Info().Str("name", name).Str("date", today).Bool("late", late).Msg("check-in recorded")

	return &ports.CheckinResult{
		Status:    ports.CheckinOK,
		Late:      late,
		Date:      today,
		CheckedAt: at,
	}, nil
}

// releaseGuard frees the dedup slot after a failed check-in so the caller
// can retry. Best effort: the key expires on its own anyway.
func (s *CheckinService) releaseGuard(ctx context.Context, date, name string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, date, name); err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("failed to release check-in guard")
	}
}

// naive layouts accepted for timezone-less timestamps, most specific first.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseWhen parses a client-asserted ISO-8601 instant. Values carrying a
// zone offset are converted to loc; timezone-naive values are interpreted as
// local time in loc.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
