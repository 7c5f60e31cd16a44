package service

import (
	"fmt"
	"time"
)

// Cutoff is the configured time-of-day separating on-time from late
// check-ins. A check-in at exactly the cutoff is on time.
type Cutoff struct {
	Hour   int
	Minute int
}

// DefaultCutoff is used when the configured value cannot be parsed.
var DefaultCutoff = Cutoff{Hour: 8, Minute: 0}

// ParseCutoff parses an "HH:MM" string. Unparsable input falls back to
// DefaultCutoff, never to an error: a misconfigured cutoff should not take
// the service down.
func ParseCutoff(s string) Cutoff {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return DefaultCutoff
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return DefaultCutoff
	}
	return Cutoff{Hour: h, Minute: m}
}

// On places the cutoff on the calendar date of at, in loc.
func (c Cutoff) On(at time.Time, loc *time.Location) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), c.Hour, c.Minute, 0, 0, loc)
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
