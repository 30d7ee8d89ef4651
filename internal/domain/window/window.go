// Package window computes the weekly pick window: local Thursday 00:00 to
// local Tuesday 00:00 in the competition's reference zone.
package window

import (
	"context"
	"time"
)

// Days is the length of the window in local calendar days.
const Days = 5

const DefaultZone = "Europe/Dublin"

// Window is the half-open interval [Start, End) in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Compute returns the window starting on the next local Thursday on or after
// now. Both endpoints are local midnights, so the UTC length is 119h or 121h
// when a DST transition falls inside.
func Compute(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	lookahead := (int(time.Thursday) - int(local.Weekday()) + 7) % 7
	y, m, d := local.Date()
	d += lookahead

	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc).UTC(),
		End:   time.Date(y, m, d+Days, 0, 0, 0, 0, loc).UTC(),
	}
}

func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// ISOWeek returns the ISO year and week of Start's local calendar date.
func (w Window) ISOWeek(loc *time.Location) (year, week int) {
	if loc == nil {
		loc = time.UTC
	}
	return w.Start.In(loc).ISOWeek()
}

// UTCDates returns each UTC calendar date from Start's date inclusive to
// End's date exclusive.
func (w Window) UTCDates() []time.Time {
	start := truncateUTCDate(w.Start)
	end := truncateUTCDate(w.End)
	var out []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func truncateUTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Repository stores the singleton active window.
type Repository interface {
	Get(ctx context.Context) (Window, bool, error)
	Set(ctx context.Context, w Window) error
}
