package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
)

// ExternalFixture is a game as listed by the fixture import feed.
type ExternalFixture struct {
	ID         string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	HomeSpread *float64
	AwaySpread *float64
}

// FixtureProvider lists upcoming games with spreads.
type FixtureProvider interface {
	FetchFixtures(ctx context.Context) ([]ExternalFixture, error)
}

// ScoreboardProvider lists final scores for one UTC calendar date.
type ScoreboardProvider interface {
	FetchScoreboard(ctx context.Context, date time.Time) ([]result.External, error)
}

// ResultsPublishedEvent is emitted after an ingestion run saves results.
type ResultsPublishedEvent struct {
	Week      publishedweek.Week
	Saved     int
	Ambiguous int
	Unmatched int
	At        time.Time
}

// ResultsPublisher notifies downstream consumers. Failures are logged by the
// caller and never fail the ingestion.
type ResultsPublisher interface {
	PublishResults(ctx context.Context, event ResultsPublishedEvent) error
}

type NoopResultsPublisher struct{}

func (NoopResultsPublisher) PublishResults(context.Context, ResultsPublishedEvent) error {
	return nil
}
