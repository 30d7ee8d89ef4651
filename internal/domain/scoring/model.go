// Package scoring grades picks against the spread.
package scoring

import (
	"math"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
)

type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomePush    Outcome = "push"
	OutcomeLoss    Outcome = "loss"
	OutcomeUnknown Outcome = "unknown"
)

const (
	PointsWin  = 3
	PointsPush = 1
	PointsLoss = 0
)

func (o Outcome) Points() int {
	switch o {
	case OutcomeWin:
		return PointsWin
	case OutcomePush:
		return PointsPush
	default:
		return PointsLoss
	}
}

func (o Outcome) Graded() bool {
	return o == OutcomeWin || o == OutcomePush || o == OutcomeLoss
}

// Grade adds each side's spread to its score and compares. A missing spread
// is inferred from the other side, then treated as zero.
func Grade(f fixture.Fixture, r result.Result, team string) Outcome {
	selected, opponent := r.ScoreFor(f, team)
	adjustedSelected := float64(selected) + f.SpreadFor(team)
	adjustedOpponent := float64(opponent) + f.SpreadFor(f.Opponent(team))

	diff := adjustedSelected - adjustedOpponent
	switch {
	case math.Abs(diff) < fixture.SpreadTolerance:
		return OutcomePush
	case diff > 0:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

// DisplayOutcome is Grade for presentation: no result, or a 0-0 placeholder
// on a game that has not kicked off, shows as unknown.
func DisplayOutcome(f fixture.Fixture, r result.Result, hasResult bool, team string, now time.Time) Outcome {
	if !hasResult {
		return OutcomeUnknown
	}
	if r.HomeScore == 0 && r.AwayScore == 0 && f.KickoffAt.After(now) {
		return OutcomeUnknown
	}
	return Grade(f, r, team)
}
