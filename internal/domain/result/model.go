package result

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
)

// Result is the final score of a fixture. Upserts are last-write-wins.
type Result struct {
	FixtureID string
	HomeScore int
	AwayScore int
	UpdatedAt time.Time
}

// External is a final score as reported by a scoreboard provider.
type External struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// TeamComparator decides whether an external team name refers to a stored
// team name.
type TeamComparator func(external, stored string) bool

// TeamMatch is the default comparator: lowercased trimmed names match when
// either contains the other, or when any whitespace token of the external
// name is contained in the stored name.
func TeamMatch(external, stored string) bool {
	a := strings.ToLower(strings.TrimSpace(external))
	b := strings.ToLower(strings.TrimSpace(stored))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return true
	}
	for _, token := range strings.Fields(a) {
		if strings.Contains(b, token) {
			return true
		}
	}
	return false
}

// Match maps ext onto f, trying the stored orientation first and then the
// reversed one. The returned result carries scores in f's orientation.
func Match(ext External, f fixture.Fixture, cmp TeamComparator) (Result, bool) {
	if cmp == nil {
		cmp = TeamMatch
	}
	if cmp(ext.HomeTeam, f.HomeTeam) && cmp(ext.AwayTeam, f.AwayTeam) {
		return Result{FixtureID: f.ID, HomeScore: ext.HomeScore, AwayScore: ext.AwayScore}, true
	}
	if cmp(ext.HomeTeam, f.AwayTeam) && cmp(ext.AwayTeam, f.HomeTeam) {
		return Result{FixtureID: f.ID, HomeScore: ext.AwayScore, AwayScore: ext.HomeScore}, true
	}
	return Result{}, false
}

func (r Result) Validate() bool {
	return r.FixtureID != "" && r.HomeScore >= 0 && r.AwayScore >= 0
}

// ScoreFor returns team's score and the opponent's score.
func (r Result) ScoreFor(f fixture.Fixture, team string) (selected, opponent int) {
	if team == f.HomeTeam {
		return r.HomeScore, r.AwayScore
	}
	return r.AwayScore, r.HomeScore
}

type Repository interface {
	// SaveAndPublish upserts results and sets the published week in one
	// transaction. It returns the number of rows written.
	SaveAndPublish(ctx context.Context, items []Result, week publishedweek.Week) (int, error)
	ListByFixtureIDs(ctx context.Context, fixtureIDs []string) ([]Result, error)
	ListAll(ctx context.Context) ([]Result, error)
}
