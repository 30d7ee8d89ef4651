package fixture

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// SpreadTolerance is the float tolerance used when comparing spreads and
// adjusted scores.
const SpreadTolerance = 1e-9

// Fixture is one scheduled NFL game with its imported point spreads.
// Spreads are stored as received; a missing side is inferred on read.
type Fixture struct {
	ID         string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	HomeSpread *float64
	AwaySpread *float64
}

// Spreads returns the home and away spreads, inferring a missing side as the
// negation of the other. Either value is nil only when both are absent.
func (f Fixture) Spreads() (home, away *float64) {
	home, away = f.HomeSpread, f.AwaySpread
	switch {
	case home == nil && away != nil:
		inferred := -*away
		home = &inferred
	case away == nil && home != nil:
		inferred := -*home
		away = &inferred
	}
	return home, away
}

// SpreadFor returns the spread for team after inference, or zero when unknown.
func (f Fixture) SpreadFor(team string) float64 {
	home, away := f.Spreads()
	var spread *float64
	switch team {
	case f.HomeTeam:
		spread = home
	case f.AwayTeam:
		spread = away
	}
	if spread == nil {
		return 0
	}
	return *spread
}

// HasTeam reports whether team is exactly the home or away name.
func (f Fixture) HasTeam(team string) bool {
	return team != "" && (team == f.HomeTeam || team == f.AwayTeam)
}

// Opponent returns the other side of team.
func (f Fixture) Opponent(team string) string {
	if team == f.HomeTeam {
		return f.AwayTeam
	}
	return f.HomeTeam
}

// Label renders "Away @ Home".
func (f Fixture) Label() string {
	return f.AwayTeam + " @ " + f.HomeTeam
}

func (f Fixture) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("fixture id is required")
	}
	if strings.TrimSpace(f.HomeTeam) == "" || strings.TrimSpace(f.AwayTeam) == "" {
		return fmt.Errorf("fixture %s: home and away teams are required", f.ID)
	}
	if strings.EqualFold(strings.TrimSpace(f.HomeTeam), strings.TrimSpace(f.AwayTeam)) {
		return fmt.Errorf("fixture %s: home and away teams must differ", f.ID)
	}
	if f.KickoffAt.IsZero() {
		return fmt.Errorf("fixture %s: kickoff is required", f.ID)
	}
	if f.HomeSpread != nil && f.AwaySpread != nil {
		if math.Abs(*f.HomeSpread+*f.AwaySpread) > SpreadTolerance {
			return fmt.Errorf("fixture %s: home spread %.1f must be the negation of away spread %.1f", f.ID, *f.HomeSpread, *f.AwaySpread)
		}
	}
	return nil
}

// LockedAt reports whether picks on the fixture are closed at now. A fixture
// stays open only while more than lead remains before kickoff.
func (f Fixture) LockedAt(now time.Time, lead time.Duration) bool {
	return f.KickoffAt.Sub(now) <= lead
}

// SortByKickoff orders fixtures by kickoff then id.
func SortByKickoff(items []Fixture) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
			return items[i].KickoffAt.Before(items[j].KickoffAt)
		}
		return items[i].ID < items[j].ID
	})
}
