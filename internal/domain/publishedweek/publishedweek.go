// Package publishedweek holds the ISO week whose results are visible to
// every player. Once set it is only ever replaced, never cleared.
package publishedweek

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
)

type Week struct {
	Year int
	Week int
}

func FromTime(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

func (w Week) IsZero() bool {
	return w.Year == 0 && w.Week == 0
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Monday returns 00:00 UTC on the Monday of the week.
func (w Week) Monday() time.Time {
	// Jan 4 is always in ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w.Week-1)*7)
}

// Window returns the pick window that starts in this week, so a Monday night
// game belongs to the week of the Thursday before it.
func (w Week) Window(loc *time.Location) window.Window {
	return window.Compute(w.Monday().Add(12*time.Hour), loc)
}

// Previous returns the ISO week before w, crossing year boundaries.
func Previous(w Week) Week {
	return FromTime(w.Monday().AddDate(0, 0, -7))
}

type Repository interface {
	Get(ctx context.Context) (Week, bool, error)
}
