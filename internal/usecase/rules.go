package usecase

import (
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
)

const (
	DefaultLockLead = 2 * time.Hour
	DefaultMaxPicks = 5
)

// Rules are the competition parameters shared by the services.
type Rules struct {
	Location *time.Location
	LockLead time.Duration
	MaxPicks int
}

func DefaultRules() Rules {
	loc, err := time.LoadLocation(window.DefaultZone)
	if err != nil {
		loc = time.UTC
	}
	return Rules{
		Location: loc,
		LockLead: DefaultLockLead,
		MaxPicks: DefaultMaxPicks,
	}
}

func (r Rules) normalize() Rules {
	defaults := DefaultRules()
	if r.Location == nil {
		r.Location = defaults.Location
	}
	if r.LockLead <= 0 {
		r.LockLead = defaults.LockLead
	}
	if r.MaxPicks < 1 {
		r.MaxPicks = defaults.MaxPicks
	}
	return r
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
